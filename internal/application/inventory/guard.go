package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopcore/shopcore/internal/domain/product"
	"github.com/shopcore/shopcore/internal/observability"
	"github.com/shopcore/shopcore/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

var ErrInvalidQuantity = errors.New("inventory: quantity must be greater than zero")

const guardService = "inventory-guard"

// Reservation is the transient token handed back when a check-and-reserve
// succeeds. The stock decrement has already been applied atomically by the
// store; the token tells the caller what to hand to Release on rollback.
type Reservation struct {
	ProductID string
	Quantity  int
	Remaining int
}

// Guard funnels every stock movement through the store's atomic adjust
// operation so a check and its decrement can never interleave with another
// reservation on the same product.
type Guard struct {
	store  product.StockStore
	log    observability.Logger
	tracer observability.Tracer

	reservations observability.Counter // stock_reservations_total{op,outcome}
}

func NewGuard(store product.StockStore, tel observability.Observability) *Guard {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Guard{
		store:        store,
		log:          tel.Logger().With(observability.F("service", guardService)),
		tracer:       tel.Tracer(),
		reservations: tel.Metrics().Counter(observability.MStockReservations),
	}
}

// CheckAndReserve validates that quantity units are available and reserves
// them in one atomic step. Requesting exactly the current stock succeeds.
// On shortfall the returned error carries the current stock unchanged.
func (g *Guard) CheckAndReserve(ctx context.Context, productID string, quantity int) (*Reservation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	ctx, span := g.tracer.Start(ctx, "Guard.CheckAndReserve",
		attribute.String("product.id", productID),
		attribute.Int("stock.requested", quantity),
	)
	defer span.End()

	remaining, err := g.store.AdjustStock(ctx, productID, -quantity)
	if err != nil {
		g.reservations.Add(1,
			observability.L("op", "reserve"),
			observability.L("outcome", "error"),
		)
		logctx.FromOr(ctx, g.log).Warn("stock_reserve_failed",
			observability.F("product_id", productID),
			observability.F("quantity", quantity),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("inventory: reserve: %w", err)
	}

	g.reservations.Add(1,
		observability.L("op", "reserve"),
		observability.L("outcome", "success"),
	)
	span.SetAttributes(attribute.Int("stock.remaining", remaining))

	return &Reservation{ProductID: productID, Quantity: quantity, Remaining: remaining}, nil
}

// Release restores previously reserved stock, e.g. when a line item shrinks
// or a mutation rolls back. It never drives stock negative because it only
// ever adds.
func (g *Guard) Release(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	ctx, span := g.tracer.Start(ctx, "Guard.Release",
		attribute.String("product.id", productID),
		attribute.Int("stock.released", quantity),
	)
	defer span.End()

	if _, err := g.store.AdjustStock(ctx, productID, quantity); err != nil {
		g.reservations.Add(1,
			observability.L("op", "release"),
			observability.L("outcome", "error"),
		)
		return fmt.Errorf("inventory: release: %w", err)
	}

	g.reservations.Add(1,
		observability.L("op", "release"),
		observability.L("outcome", "success"),
	)
	return nil
}

// Rollback undoes a reservation. Missing products are tolerated: a product
// deleted between reserve and rollback has no stock left to restore.
func (g *Guard) Rollback(ctx context.Context, r *Reservation) {
	if r == nil {
		return
	}
	if err := g.Release(ctx, r.ProductID, r.Quantity); err != nil && !errors.Is(err, product.ErrNotFound) {
		logctx.FromOr(ctx, g.log).Error("stock_rollback_failed",
			observability.F("product_id", r.ProductID),
			observability.F("quantity", r.Quantity),
			observability.F("error", err.Error()),
		)
	}
}

// Stock reads the current stock without reserving.
func (g *Guard) Stock(ctx context.Context, productID string) (int, error) {
	return g.store.Stock(ctx, productID)
}
