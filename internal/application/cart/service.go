package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopcore/shopcore/internal/application/inventory"
	"github.com/shopcore/shopcore/internal/domain/actor"
	"github.com/shopcore/shopcore/internal/domain/authz"
	domcart "github.com/shopcore/shopcore/internal/domain/cart"
	"github.com/shopcore/shopcore/internal/domain/product"
	"github.com/shopcore/shopcore/internal/observability"
	"github.com/shopcore/shopcore/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	cartService        = "cart-service"
	useCaseMutateItem  = "cart.mutate_item"
	useCaseClearCart   = "cart.clear"
	useCasePurchase    = "cart.purchase"
	useCaseVerifyStock = "cart.verify_stock"
	spanPrefix         = "UC."

	defaultMutateRetries = 3
	verifyConcurrency    = 8
)

// Service orchestrates cart line-item mutation: the authorization engine
// decides first, the inventory guard reserves second, and only then is the
// aggregate changed, under an optimistic version check so two concurrent
// mutations of the same cart serialize instead of overwriting each other.
type Service struct {
	carts    domcart.Repository
	products product.Repository
	guard    *inventory.Guard
	engine   *authz.Engine
	ids      IDGenerator
	retries  int

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	retryCounter observability.Counter   // cart_conflict_retries_total{use_case}
}

type Option func(*Service)

// WithMutateRetries bounds how often a version conflict is retried before
// it surfaces to the caller.
func WithMutateRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retries = n
		}
	}
}

func NewService(
	carts domcart.Repository,
	products product.Repository,
	guard *inventory.Guard,
	engine *authz.Engine,
	ids IDGenerator,
	tel observability.Observability,
	opts ...Option,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	s := &Service{
		carts:        carts,
		products:     products,
		guard:        guard,
		engine:       engine,
		ids:          ids,
		retries:      defaultMutateRetries,
		log:          tel.Logger().With(observability.F("service", cartService)),
		tracer:       tel.Tracer(),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
		retryCounter: tel.Metrics().Counter(observability.MCartConflictRetries),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MutateItem sets the product's line item in the cart to newQuantity.
// Zero removes the line. Only the quantity delta is reserved or released
// against stock, so an unchanged quantity touches nothing. Any failure
// leaves both the cart and the stock exactly as they were.
func (s *Service) MutateItem(ctx context.Context, act *actor.Actor, cartID, productID string, newQuantity int) (_ *domcart.Summary, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseMutateItem),
		observability.F("cart_id", cartID),
		observability.F("product_id", productID),
		observability.F("quantity", newQuantity),
	)

	ctx, span := s.tracer.Start(ctx, spanPrefix+"MutateItem",
		attribute.String("use_case", useCaseMutateItem),
		attribute.String("cart.id", cartID),
		attribute.String("product.id", productID),
		attribute.Int("cart.new_quantity", newQuantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseMutateItem),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat,
			observability.L("use_case", useCaseMutateItem),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if act == nil {
		outcome, statusText = "error", "UNAUTHENTICATED"
		return nil, authz.ErrUnauthenticated
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			s.retryCounter.Add(1, observability.L("use_case", useCaseMutateItem))
		}

		var summary *domcart.Summary
		var retry bool
		summary, retry, err = s.mutateOnce(ctx, act, cartID, productID, newQuantity)
		if retry {
			continue
		}
		if err != nil {
			outcome, statusText = "error", statusFromError(err)
			return nil, err
		}
		return summary, nil
	}

	outcome, statusText = "error", "CONCURRENT_CONFLICT"
	return nil, fmt.Errorf("cart: mutation retries exhausted: %w", domcart.ErrConflict)
}

// mutateOnce runs one optimistic attempt. retry is true when the version
// check lost the race and the whole attempt should rerun on fresh state.
func (s *Service) mutateOnce(ctx context.Context, act *actor.Actor, cartID, productID string, newQuantity int) (_ *domcart.Summary, retry bool, err error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, false, err
	}

	current := c.Quantity(productID)
	action := resolveAction(current, newQuantity)

	if err := s.engine.Authorize(authz.Input{
		ActorID: act.ID,
		Role:    act.Role,
		Action:  action,
	}); err != nil {
		return nil, false, err
	}

	// Structural ownership: an actor mutates only its own cart, whatever
	// the role policy says.
	if c.OwnerID != act.ID {
		return nil, false, domcart.ErrNotOwner
	}

	if newQuantity < 0 {
		return nil, false, domcart.ErrInvalidQuantity
	}

	if newQuantity == current {
		// No-op: no stock movement, snapshot of the untouched cart.
		summary, err := s.summarize(ctx, c)
		return summary, false, err
	}

	delta := newQuantity - current

	var reservation *inventory.Reservation
	if delta > 0 {
		reservation, err = s.guard.CheckAndReserve(ctx, productID, delta)
		if err != nil {
			return nil, false, err
		}
	}

	next := c.Clone()
	if err := next.SetQuantity(productID, newQuantity); err != nil {
		s.guard.Rollback(ctx, reservation)
		return nil, false, err
	}

	if err := s.carts.SaveItems(ctx, cartID, next.Items, c.Version); err != nil {
		s.guard.Rollback(ctx, reservation)
		if errors.Is(err, domcart.ErrConflict) {
			return nil, true, err
		}
		return nil, false, err
	}

	// The freed amount goes back only after the cart change is durable, so
	// a failed save never leaks stock.
	if delta < 0 {
		if err := s.guard.Release(ctx, productID, -delta); err != nil && !errors.Is(err, product.ErrNotFound) {
			logctx.FromOr(ctx, s.log).Error("stock_release_failed",
				observability.F("product_id", productID),
				observability.F("quantity", -delta),
				observability.F("error", err.Error()),
			)
		}
	}

	summary, err := s.summarize(ctx, next)
	return summary, false, err
}

// Get returns the summarized cart after the structural ownership check.
func (s *Service) Get(ctx context.Context, act *actor.Actor, cartID string) (*domcart.Summary, error) {
	if act == nil {
		return nil, authz.ErrUnauthenticated
	}
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != act.ID && act.Role != actor.RoleAdmin {
		return nil, domcart.ErrNotOwner
	}
	return s.summarize(ctx, c)
}

// Create opens an empty cart owned by the actor.
func (s *Service) Create(ctx context.Context, act *actor.Actor) (*domcart.Cart, error) {
	if act == nil {
		return nil, authz.ErrUnauthenticated
	}
	c := domcart.New(s.ids.NewID(), act.ID)
	if err := s.carts.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Clear empties the cart in one versioned save and hands every line's
// reserved stock back afterwards. Clearing an already empty cart is a no-op.
func (s *Service) Clear(ctx context.Context, act *actor.Actor, cartID string) (_ *domcart.Summary, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseClearCart),
		observability.F("cart_id", cartID),
	)

	ctx, span := s.tracer.Start(ctx, spanPrefix+"Clear",
		attribute.String("use_case", useCaseClearCart),
		attribute.String("cart.id", cartID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseClearCart),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat,
			observability.L("use_case", useCaseClearCart),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if act == nil {
		outcome, statusText = "error", "UNAUTHENTICATED"
		return nil, authz.ErrUnauthenticated
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			s.retryCounter.Add(1, observability.L("use_case", useCaseClearCart))
		}

		var retry bool
		retry, err = s.clearOnce(ctx, act, cartID)
		if retry {
			continue
		}
		if err != nil {
			outcome, statusText = "error", statusFromError(err)
			return nil, err
		}
		return &domcart.Summary{CartID: cartID, Items: []domcart.SummaryItem{}}, nil
	}

	outcome, statusText = "error", "CONCURRENT_CONFLICT"
	return nil, fmt.Errorf("cart: clear retries exhausted: %w", domcart.ErrConflict)
}

func (s *Service) clearOnce(ctx context.Context, act *actor.Actor, cartID string) (retry bool, err error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return false, err
	}

	if err := s.engine.Authorize(authz.Input{
		ActorID: act.ID,
		Role:    act.Role,
		Action:  authz.CartRemoveProduct,
	}); err != nil {
		return false, err
	}
	if c.OwnerID != act.ID {
		return false, domcart.ErrNotOwner
	}

	if len(c.Items) == 0 {
		return false, nil
	}

	if err := s.carts.SaveItems(ctx, cartID, nil, c.Version); err != nil {
		if errors.Is(err, domcart.ErrConflict) {
			return true, err
		}
		return false, err
	}

	// Freed amounts go back only after the cleared cart is durable, so a
	// failed save never leaks stock.
	for _, it := range c.Items {
		if err := s.guard.Release(ctx, it.ProductID, it.Quantity); err != nil && !errors.Is(err, product.ErrNotFound) {
			logctx.FromOr(ctx, s.log).Error("stock_release_failed",
				observability.F("product_id", it.ProductID),
				observability.F("quantity", it.Quantity),
				observability.F("error", err.Error()),
			)
		}
	}
	return false, nil
}

func (s *Service) summarize(ctx context.Context, c *domcart.Cart) (*domcart.Summary, error) {
	view := make(map[string]*product.Product, len(c.Items))
	for _, it := range c.Items {
		p, err := s.products.Get(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				continue // summarized as unavailable
			}
			return nil, err
		}
		view[it.ProductID] = p
	}
	summary := domcart.Summarize(c, view)
	return &summary, nil
}

func resolveAction(current, newQuantity int) authz.Action {
	switch {
	case newQuantity == 0:
		return authz.CartRemoveProduct
	case current > 0:
		return authz.CartUpdateQuantity
	default:
		return authz.CartAddProduct
	}
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, authz.ErrDenied):
		return "AUTHORIZATION_DENIED"
	case errors.Is(err, authz.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, domcart.ErrNotOwner):
		return "NOT_CART_OWNER"
	case errors.Is(err, domcart.ErrNotFound), errors.Is(err, product.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domcart.ErrInvalidQuantity), errors.Is(err, inventory.ErrInvalidQuantity):
		return "QUANTITY_INVALID"
	case errors.Is(err, product.ErrInsufficientStock):
		return "STOCK_INSUFFICIENT"
	case errors.Is(err, domcart.ErrConflict):
		return "CONCURRENT_CONFLICT"
	default:
		return "INTERNAL"
	}
}

// PurchasedLine is one fulfilled line of a purchase.
type PurchasedLine struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

// UnavailableLine is a line that could not be fulfilled, with the stock
// observed at decision time.
type UnavailableLine struct {
	ProductID    string
	Requested    int
	CurrentStock int
}

// PurchaseResult splits the cart into fulfilled and unfulfilled lines.
// Unfulfilled lines stay in the cart for a later retry.
type PurchaseResult struct {
	TicketID    string
	Purchased   []PurchasedLine
	Unavailable []UnavailableLine
	Total       float64
}

// Purchase reserves stock line by line, removes the fulfilled lines from
// the cart, and returns a ticket covering what was actually bought. A
// version conflict rolls back every reservation of the attempt and reruns
// on fresh state.
func (s *Service) Purchase(ctx context.Context, act *actor.Actor, cartID string) (_ *PurchaseResult, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCasePurchase),
		observability.F("cart_id", cartID),
	)

	ctx, span := s.tracer.Start(ctx, spanPrefix+"Purchase",
		attribute.String("use_case", useCasePurchase),
		attribute.String("cart.id", cartID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCasePurchase),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat,
			observability.L("use_case", useCasePurchase),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if act == nil {
		outcome, statusText = "error", "UNAUTHENTICATED"
		return nil, authz.ErrUnauthenticated
	}
	if err = s.engine.Authorize(authz.Input{
		ActorID: act.ID,
		Role:    act.Role,
		Action:  authz.CartPurchase,
	}); err != nil {
		outcome, statusText = "error", "AUTHORIZATION_DENIED"
		return nil, err
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			s.retryCounter.Add(1, observability.L("use_case", useCasePurchase))
		}

		var result *PurchaseResult
		var retry bool
		result, retry, err = s.purchaseOnce(ctx, act, cartID)
		if retry {
			continue
		}
		if err != nil {
			outcome, statusText = "error", statusFromError(err)
			return nil, err
		}
		span.SetAttributes(
			attribute.Int("purchase.fulfilled", len(result.Purchased)),
			attribute.Int("purchase.unfulfilled", len(result.Unavailable)),
		)
		return result, nil
	}

	outcome, statusText = "error", "CONCURRENT_CONFLICT"
	return nil, fmt.Errorf("cart: purchase retries exhausted: %w", domcart.ErrConflict)
}

func (s *Service) purchaseOnce(ctx context.Context, act *actor.Actor, cartID string) (_ *PurchaseResult, retry bool, err error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, false, err
	}
	if c.OwnerID != act.ID {
		return nil, false, domcart.ErrNotOwner
	}

	result := &PurchaseResult{TicketID: s.ids.NewID()}
	var reservations []*inventory.Reservation
	remaining := make([]domcart.Item, 0, len(c.Items))

	rollback := func() {
		for _, r := range reservations {
			s.guard.Rollback(ctx, r)
		}
	}

	for _, it := range c.Items {
		p, perr := s.products.Get(ctx, it.ProductID)
		if perr != nil {
			if errors.Is(perr, product.ErrNotFound) {
				result.Unavailable = append(result.Unavailable, UnavailableLine{
					ProductID: it.ProductID,
					Requested: it.Quantity,
				})
				continue // dangling line, dropped below with the purchase
			}
			rollback()
			return nil, false, perr
		}

		res, rerr := s.guard.CheckAndReserve(ctx, it.ProductID, it.Quantity)
		if rerr != nil {
			var shortfall *product.StockShortfallError
			switch {
			case errors.As(rerr, &shortfall):
				result.Unavailable = append(result.Unavailable, UnavailableLine{
					ProductID:    it.ProductID,
					Requested:    it.Quantity,
					CurrentStock: shortfall.CurrentStock,
				})
				remaining = append(remaining, it)
				continue
			case errors.Is(rerr, product.ErrNotFound):
				result.Unavailable = append(result.Unavailable, UnavailableLine{
					ProductID: it.ProductID,
					Requested: it.Quantity,
				})
				continue
			default:
				rollback()
				return nil, false, rerr
			}
		}

		reservations = append(reservations, res)
		line := PurchasedLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			LineTotal: float64(it.Quantity) * p.Price,
		}
		result.Purchased = append(result.Purchased, line)
		result.Total += line.LineTotal
	}

	if err := s.carts.SaveItems(ctx, cartID, remaining, c.Version); err != nil {
		rollback()
		if errors.Is(err, domcart.ErrConflict) {
			return nil, true, err
		}
		return nil, false, err
	}

	return result, false, nil
}

// StockCheck is one line of a verification report.
type StockCheck struct {
	ProductID    string
	Requested    int
	Available    bool
	CurrentStock int
}

// VerifyStock reports, without reserving anything, which cart lines are
// currently satisfiable. Lines are checked concurrently.
func (s *Service) VerifyStock(ctx context.Context, act *actor.Actor, cartID string) (_ []StockCheck, err error) {
	if act == nil {
		return nil, authz.ErrUnauthenticated
	}

	ctx, span := s.tracer.Start(ctx, spanPrefix+"VerifyStock",
		attribute.String("use_case", useCaseVerifyStock),
		attribute.String("cart.id", cartID),
	)
	defer span.End()

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != act.ID && act.Role != actor.RoleAdmin {
		return nil, domcart.ErrNotOwner
	}

	checks := make([]StockCheck, len(c.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)

	for i, it := range c.Items {
		g.Go(func() error {
			check := StockCheck{ProductID: it.ProductID, Requested: it.Quantity}
			stock, serr := s.guard.Stock(gctx, it.ProductID)
			switch {
			case errors.Is(serr, product.ErrNotFound):
				// missing product: reported, not fatal
			case serr != nil:
				return serr
			default:
				check.CurrentStock = stock
				check.Available = it.Quantity <= stock
			}
			checks[i] = check
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return checks, nil
}

// PruneProduct removes the product's line from every cart that still holds
// one. Called when a product disappears from the catalog; no stock is
// released because there is no stock left to release.
func (s *Service) PruneProduct(ctx context.Context, productID string) (int, error) {
	carts, err := s.carts.FindByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, c := range carts {
		for attempt := 0; attempt < s.retries; attempt++ {
			next := c.Clone()
			if !next.RemoveLine(productID) {
				break
			}
			err := s.carts.SaveItems(ctx, c.ID, next.Items, c.Version)
			if err == nil {
				pruned++
				break
			}
			if !errors.Is(err, domcart.ErrConflict) {
				return pruned, err
			}
			c, err = s.carts.Get(ctx, c.ID)
			if err != nil {
				if errors.Is(err, domcart.ErrNotFound) {
					break
				}
				return pruned, err
			}
		}
	}
	return pruned, nil
}
