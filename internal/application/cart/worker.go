package cart

import (
	"context"
	"time"

	"github.com/shopcore/shopcore/internal/domain/event"
	"github.com/shopcore/shopcore/internal/domain/product"
	"github.com/shopcore/shopcore/internal/observability"
	"github.com/shopcore/shopcore/internal/observability/logctx"
)

const pruneWorkerService = "cart_prune_worker"

// Worker prunes cart line items when their product leaves the catalog, so
// deleted products never leave dangling references behind.
type Worker struct {
	subscriber event.Subscriber
	service    *Service

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewWorker(subscriber event.Subscriber, service *Service, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		subscriber:   subscriber,
		service:      service,
		log:          tel.Logger().With(observability.F("service", pruneWorkerService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.service == nil {
		return
	}
	w.subscriber.Subscribe(product.DeletedEvent{}.EventName(), w.handleProductDeleted)
}

func (w *Worker) handleProductDeleted(ctx context.Context, e event.Event) error {
	const useCase = "cart.worker.product_deleted"

	evt, ok := e.(product.DeletedEvent)
	if !ok {
		w.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", "ignored"),
		)
		return nil
	}

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCase),
		observability.F("product_id", evt.ProductID),
	)

	start := time.Now()
	pruned, err := w.service.PruneProduct(ctx, evt.ProductID)
	lat := time.Since(start).Seconds()

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	w.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	w.durHistogram.Observe(lat, observability.L("use_case", useCase))

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("pruned_carts", pruned),
		observability.F("latency_seconds", lat),
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logger.Info("use_case_done", fields...)

	return err
}
