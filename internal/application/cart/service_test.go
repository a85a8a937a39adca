package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopcore/shopcore/internal/application/inventory"
	"github.com/shopcore/shopcore/internal/domain/actor"
	"github.com/shopcore/shopcore/internal/domain/authz"
	domcart "github.com/shopcore/shopcore/internal/domain/cart"
	"github.com/shopcore/shopcore/internal/domain/product"
	"github.com/shopcore/shopcore/internal/infrastructure/memory"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixture struct {
	carts    *memory.CartRepository
	products *memory.ProductRepository
	svc      *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		carts:    memory.NewCartRepository(),
		products: memory.NewProductRepository(),
	}
	guard := inventory.NewGuard(f.products, nil)
	f.svc = NewService(f.carts, f.products, guard, authz.NewEngine(authz.DefaultTable()), &seqIDs{}, nil, opts...)
	return f
}

func (f *fixture) seedProduct(t *testing.T, id string, price float64, stock int) {
	t.Helper()
	p, err := product.New(id, "", "Item "+id, "code-"+id, "misc", price, stock)
	if err != nil {
		t.Fatalf("product.New(%s): %v", id, err)
	}
	if err := f.products.Insert(context.Background(), p); err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
}

func (f *fixture) seedCart(t *testing.T, id, ownerID string, items ...domcart.Item) {
	t.Helper()
	c := domcart.New(id, ownerID)
	c.Items = items
	if err := f.carts.Insert(context.Background(), c); err != nil {
		t.Fatalf("seed cart %s: %v", id, err)
	}
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	stock, err := f.products.Stock(context.Background(), productID)
	if err != nil {
		t.Fatalf("stock %s: %v", productID, err)
	}
	return stock
}

func userActor(id string) *actor.Actor    { return &actor.Actor{ID: id, Role: actor.RoleUser} }
func premiumActor(id string) *actor.Actor { return &actor.Actor{ID: id, Role: actor.RolePremium} }
func adminActor(id string) *actor.Actor   { return &actor.Actor{ID: id, Role: actor.RoleAdmin} }

func TestMutateItemAddsWithinStock(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 5)
	f.seedCart(t, "c1", "u1")

	summary, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 2)
	if err != nil {
		t.Fatalf("MutateItem: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.TotalPrice != 20 {
		t.Errorf("TotalPrice = %v, want 20", summary.TotalPrice)
	}
	if got := f.stock(t, "p1"); got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}
}

func TestMutateItemShortfallLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 5)
	f.seedCart(t, "c1", "u1")

	_, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 6)
	if !errors.Is(err, product.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	var shortfall *product.StockShortfallError
	if !errors.As(err, &shortfall) || shortfall.CurrentStock != 5 {
		t.Fatalf("shortfall detail missing: %v", err)
	}

	c, err := f.carts.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if len(c.Items) != 0 {
		t.Errorf("cart mutated despite shortfall: %+v", c.Items)
	}
	if got := f.stock(t, "p1"); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
}

func TestMutateItemExactStockBoundary(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 5)
	f.seedCart(t, "c1", "u1")

	if _, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 5); err != nil {
		t.Fatalf("requesting exactly the available stock must succeed: %v", err)
	}
	if got := f.stock(t, "p1"); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestMutateItemDeniedForSellerRoles(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 5)
	f.seedCart(t, "c1", "p9")
	f.seedCart(t, "c2", "a9")

	if _, err := f.svc.MutateItem(context.Background(), premiumActor("p9"), "c1", "p1", 1); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("premium add: expected ErrDenied, got %v", err)
	}
	if _, err := f.svc.MutateItem(context.Background(), adminActor("a9"), "c2", "p1", 1); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("admin add: expected ErrDenied, got %v", err)
	}
	if got := f.stock(t, "p1"); got != 5 {
		t.Errorf("denied mutation touched stock: %d", got)
	}
}

func TestMutateItemForeignCart(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 5)
	f.seedCart(t, "c1", "u1")

	if _, err := f.svc.MutateItem(context.Background(), userActor("u2"), "c1", "p1", 1); !errors.Is(err, domcart.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if got := f.stock(t, "p1"); got != 5 {
		t.Errorf("stock touched by denied actor: %d", got)
	}
}

func TestMutateItemUnauthenticated(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.MutateItem(context.Background(), nil, "c1", "p1", 1); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestMutateItemNegativeQuantity(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 5)
	f.seedCart(t, "c1", "u1")

	if _, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", -1); !errors.Is(err, domcart.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

// countingStore wraps the in-memory store to observe stock movements.
type countingStore struct {
	*memory.ProductRepository
	adjustCalls int32
}

func (s *countingStore) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	atomic.AddInt32(&s.adjustCalls, 1)
	return s.ProductRepository.AdjustStock(ctx, id, delta)
}

func TestMutateItemUnchangedQuantityTouchesNoStock(t *testing.T) {
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	store := &countingStore{ProductRepository: products}
	svc := NewService(carts, products, inventory.NewGuard(store, nil), authz.NewEngine(authz.DefaultTable()), &seqIDs{}, nil)

	p, _ := product.New("p1", "", "Item", "code-p1", "misc", 10, 5)
	if err := products.Insert(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if err := carts.Insert(context.Background(), domcart.New("c1", "u1")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 2); err != nil {
		t.Fatalf("first set: %v", err)
	}
	before := atomic.LoadInt32(&store.adjustCalls)

	summary, err := svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 2)
	if err != nil {
		t.Fatalf("no-op set: %v", err)
	}
	if summary.Items[0].Quantity != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if got := atomic.LoadInt32(&store.adjustCalls); got != before {
		t.Errorf("no-op mutation moved stock: %d adjust calls, want %d", got, before)
	}
}

func TestMutateItemDecreaseReleasesDelta(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 10)
	f.seedCart(t, "c1", "u1")

	if _, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 5); err != nil {
		t.Fatalf("set 5: %v", err)
	}
	if _, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 2); err != nil {
		t.Fatalf("set 2: %v", err)
	}
	if got := f.stock(t, "p1"); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}
}

func TestMutateItemRemoveReleasesEverything(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 10)
	f.seedCart(t, "c1", "u1")

	if _, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 3); err != nil {
		t.Fatalf("set 3: %v", err)
	}
	summary, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 0)
	if err != nil {
		t.Fatalf("set 0: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Errorf("line still present: %+v", summary.Items)
	}
	if got := f.stock(t, "p1"); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
}

// failingCartRepo makes every SaveItems fail with the configured error.
type failingCartRepo struct {
	domcart.Repository
	saveErr error
}

func (r *failingCartRepo) SaveItems(ctx context.Context, id string, items []domcart.Item, expectedVersion uint64) error {
	return r.saveErr
}

func TestMutateItemRollsBackReservationOnSaveFailure(t *testing.T) {
	products := memory.NewProductRepository()
	inner := memory.NewCartRepository()
	boom := errors.New("storage down")
	carts := &failingCartRepo{Repository: inner, saveErr: boom}
	svc := NewService(carts, products, inventory.NewGuard(products, nil), authz.NewEngine(authz.DefaultTable()), &seqIDs{}, nil)

	p, _ := product.New("p1", "", "Item", "code-p1", "misc", 10, 5)
	if err := products.Insert(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if err := inner.Insert(context.Background(), domcart.New("c1", "u1")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 3); !errors.Is(err, boom) {
		t.Fatalf("expected save failure to surface, got %v", err)
	}
	stock, _ := products.Stock(context.Background(), "p1")
	if stock != 5 {
		t.Errorf("reservation leaked: stock = %d, want 5", stock)
	}
}

func TestMutateItemConflictRetriesExhausted(t *testing.T) {
	products := memory.NewProductRepository()
	inner := memory.NewCartRepository()
	carts := &failingCartRepo{Repository: inner, saveErr: domcart.ErrConflict}
	svc := NewService(carts, products, inventory.NewGuard(products, nil), authz.NewEngine(authz.DefaultTable()), &seqIDs{}, nil)

	p, _ := product.New("p1", "", "Item", "code-p1", "misc", 10, 50)
	if err := products.Insert(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if err := inner.Insert(context.Background(), domcart.New("c1", "u1")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 3); !errors.Is(err, domcart.ErrConflict) {
		t.Fatalf("expected ErrConflict after exhausted retries, got %v", err)
	}
	// Every attempt's reservation must have been rolled back.
	stock, _ := products.Stock(context.Background(), "p1")
	if stock != 50 {
		t.Errorf("stock = %d, want 50", stock)
	}
}

func TestMutateItemConcurrentMutationsConverge(t *testing.T) {
	const workers = 8

	f := newFixture(t, WithMutateRetries(workers*4))
	f.seedCart(t, "c1", "u1")
	for i := 0; i < workers; i++ {
		f.seedProduct(t, fmt.Sprintf("p%d", i), 1, 10)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", fmt.Sprintf("p%d", i), 2)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent mutation failed: %v", err)
		}
	}

	c, err := f.carts.Get(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != workers {
		t.Fatalf("cart has %d lines, want %d: %+v", len(c.Items), workers, c.Items)
	}
	for i := 0; i < workers; i++ {
		id := fmt.Sprintf("p%d", i)
		if got := f.stock(t, id); got != 8 {
			t.Errorf("stock %s = %d, want 8", id, got)
		}
	}
}

func TestClearReleasesAllStock(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 10)
	f.seedProduct(t, "p2", 4, 5)
	f.seedCart(t, "c1", "u1")

	if _, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p1", 3); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := f.svc.MutateItem(context.Background(), userActor("u1"), "c1", "p2", 2); err != nil {
		t.Fatalf("add p2: %v", err)
	}

	summary, err := f.svc.Clear(context.Background(), userActor("u1"), "c1")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Errorf("summary not empty: %+v", summary.Items)
	}

	c, err := f.carts.Get(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != 0 {
		t.Errorf("cart still holds lines: %+v", c.Items)
	}
	if got := f.stock(t, "p1"); got != 10 {
		t.Errorf("stock p1 = %d, want 10", got)
	}
	if got := f.stock(t, "p2"); got != 5 {
		t.Errorf("stock p2 = %d, want 5", got)
	}
}

func TestClearOwnershipAndRoles(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 10)
	f.seedCart(t, "c1", "u1", domcart.Item{ProductID: "p1", Quantity: 2})

	if _, err := f.svc.Clear(context.Background(), userActor("u2"), "c1"); !errors.Is(err, domcart.ErrNotOwner) {
		t.Fatalf("stranger clear: expected ErrNotOwner, got %v", err)
	}
	if _, err := f.svc.Clear(context.Background(), adminActor("a1"), "c1"); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("admin clear: expected ErrDenied, got %v", err)
	}
	if _, err := f.svc.Clear(context.Background(), nil, "c1"); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("nil actor: expected ErrUnauthenticated, got %v", err)
	}

	c, _ := f.carts.Get(context.Background(), "c1")
	if c.Quantity("p1") != 2 {
		t.Errorf("denied clear mutated cart: %+v", c.Items)
	}
}

func TestClearEmptyCartIsNoOp(t *testing.T) {
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	store := &countingStore{ProductRepository: products}
	svc := NewService(carts, products, inventory.NewGuard(store, nil), authz.NewEngine(authz.DefaultTable()), &seqIDs{}, nil)

	if err := carts.Insert(context.Background(), domcart.New("c1", "u1")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Clear(context.Background(), userActor("u1"), "c1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := atomic.LoadInt32(&store.adjustCalls); got != 0 {
		t.Errorf("empty clear moved stock: %d adjust calls", got)
	}

	c, _ := carts.Get(context.Background(), "c1")
	if c.Version != 0 {
		t.Errorf("empty clear bumped version to %d", c.Version)
	}
}

func TestClearSaveFailureReleasesNothing(t *testing.T) {
	products := memory.NewProductRepository()
	inner := memory.NewCartRepository()
	boom := errors.New("storage down")
	carts := &failingCartRepo{Repository: inner, saveErr: boom}
	svc := NewService(carts, products, inventory.NewGuard(products, nil), authz.NewEngine(authz.DefaultTable()), &seqIDs{}, nil)

	p, _ := product.New("p1", "", "Item", "code-p1", "misc", 10, 10)
	if err := products.Insert(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if _, err := products.AdjustStock(context.Background(), "p1", -3); err != nil {
		t.Fatal(err)
	}
	c := domcart.New("c1", "u1")
	c.Items = []domcart.Item{{ProductID: "p1", Quantity: 3}}
	if err := inner.Insert(context.Background(), c); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Clear(context.Background(), userActor("u1"), "c1"); !errors.Is(err, boom) {
		t.Fatalf("expected save failure to surface, got %v", err)
	}
	// The reserved units stay reserved when the clear never landed.
	stock, _ := products.Stock(context.Background(), "p1")
	if stock != 7 {
		t.Errorf("stock = %d, want 7", stock)
	}
}

func TestGetRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "c1", "u1")

	if _, err := f.svc.Get(context.Background(), userActor("u1"), "c1"); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), adminActor("a1"), "c1"); err != nil {
		t.Errorf("admin read failed: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), userActor("u2"), "c1"); !errors.Is(err, domcart.ErrNotOwner) {
		t.Errorf("stranger read: expected ErrNotOwner, got %v", err)
	}
}

func TestCreateOpensOwnedCart(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Create(context.Background(), userActor("u1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.OwnerID != "u1" || c.ID == "" {
		t.Fatalf("cart = %+v", c)
	}

	stored, err := f.carts.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("created cart not stored: %v", err)
	}
	if len(stored.Items) != 0 {
		t.Errorf("new cart not empty: %+v", stored.Items)
	}
}

func TestPurchasePartialFulfilment(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 10)
	f.seedProduct(t, "p2", 4, 3)
	f.seedCart(t, "c1", "u1",
		domcart.Item{ProductID: "p1", Quantity: 2},
		domcart.Item{ProductID: "p2", Quantity: 5},
		domcart.Item{ProductID: "gone", Quantity: 1},
	)

	result, err := f.svc.Purchase(context.Background(), userActor("u1"), "c1")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if result.TicketID == "" {
		t.Error("missing ticket id")
	}

	if len(result.Purchased) != 1 || result.Purchased[0].ProductID != "p1" {
		t.Fatalf("Purchased = %+v", result.Purchased)
	}
	if result.Total != 20 {
		t.Errorf("Total = %v, want 20", result.Total)
	}
	if len(result.Unavailable) != 2 {
		t.Fatalf("Unavailable = %+v", result.Unavailable)
	}
	short := result.Unavailable[0]
	if short.ProductID != "p2" || short.Requested != 5 || short.CurrentStock != 3 {
		t.Errorf("shortfall line = %+v", short)
	}

	// The short line stays in the cart for a retry; the dangling line is
	// dropped with the fulfilled ones.
	c, err := f.carts.Get(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != 1 || c.Items[0].ProductID != "p2" {
		t.Fatalf("remaining cart lines = %+v", c.Items)
	}

	if got := f.stock(t, "p1"); got != 8 {
		t.Errorf("stock p1 = %d, want 8", got)
	}
	if got := f.stock(t, "p2"); got != 3 {
		t.Errorf("stock p2 = %d, want 3", got)
	}
}

func TestPurchaseDeniedForAdmin(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "c1", "a1")

	if _, err := f.svc.Purchase(context.Background(), adminActor("a1"), "c1"); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
}

func TestPurchaseEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "c1", "u1")

	result, err := f.svc.Purchase(context.Background(), userActor("u1"), "c1")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if len(result.Purchased) != 0 || len(result.Unavailable) != 0 || result.Total != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestVerifyStockReportsWithoutReserving(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 10, 10)
	f.seedProduct(t, "p2", 4, 1)
	f.seedCart(t, "c1", "u1",
		domcart.Item{ProductID: "p1", Quantity: 2},
		domcart.Item{ProductID: "p2", Quantity: 5},
		domcart.Item{ProductID: "gone", Quantity: 1},
	)

	checks, err := f.svc.VerifyStock(context.Background(), userActor("u1"), "c1")
	if err != nil {
		t.Fatalf("VerifyStock: %v", err)
	}
	if len(checks) != 3 {
		t.Fatalf("checks = %+v", checks)
	}
	if !checks[0].Available || checks[0].CurrentStock != 10 {
		t.Errorf("p1 check = %+v", checks[0])
	}
	if checks[1].Available || checks[1].CurrentStock != 1 {
		t.Errorf("p2 check = %+v", checks[1])
	}
	if checks[2].Available {
		t.Errorf("missing product reported available: %+v", checks[2])
	}

	// Read-only: stock unchanged.
	if got := f.stock(t, "p1"); got != 10 {
		t.Errorf("stock p1 = %d, want 10", got)
	}
}

func TestPruneProductClearsAllCarts(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "c1", "u1",
		domcart.Item{ProductID: "p1", Quantity: 2},
		domcart.Item{ProductID: "p2", Quantity: 1},
	)
	f.seedCart(t, "c2", "u2",
		domcart.Item{ProductID: "p1", Quantity: 4},
	)
	f.seedCart(t, "c3", "u3",
		domcart.Item{ProductID: "p2", Quantity: 1},
	)

	pruned, err := f.svc.PruneProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("PruneProduct: %v", err)
	}
	if pruned != 2 {
		t.Errorf("pruned = %d, want 2", pruned)
	}

	c1, _ := f.carts.Get(context.Background(), "c1")
	if c1.Quantity("p1") != 0 || c1.Quantity("p2") != 1 {
		t.Errorf("c1 lines = %+v", c1.Items)
	}
	c2, _ := f.carts.Get(context.Background(), "c2")
	if len(c2.Items) != 0 {
		t.Errorf("c2 lines = %+v", c2.Items)
	}
	c3, _ := f.carts.Get(context.Background(), "c3")
	if c3.Quantity("p2") != 1 {
		t.Errorf("c3 lines = %+v", c3.Items)
	}
}
