package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopcore/shopcore/internal/domain/product"
	"github.com/shopcore/shopcore/internal/infrastructure/memory"
)

func newStore(t *testing.T, productID string, stock int) *memory.ProductRepository {
	t.Helper()
	repo := memory.NewProductRepository()
	p, err := product.New(productID, "", "Widget", "code-"+productID, "misc", 9.99, stock)
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	if err := repo.Insert(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return repo
}

func TestCheckAndReserveExactStock(t *testing.T) {
	store := newStore(t, "p1", 5)
	guard := NewGuard(store, nil)

	res, err := guard.CheckAndReserve(context.Background(), "p1", 5)
	if err != nil {
		t.Fatalf("reserving exactly the available stock must succeed: %v", err)
	}
	if res.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", res.Remaining)
	}

	stock, err := guard.Stock(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Stock: %v", err)
	}
	if stock != 0 {
		t.Errorf("stock after full reservation = %d, want 0", stock)
	}
}

func TestCheckAndReserveShortfall(t *testing.T) {
	store := newStore(t, "p1", 5)
	guard := NewGuard(store, nil)

	_, err := guard.CheckAndReserve(context.Background(), "p1", 6)
	if err == nil {
		t.Fatal("expected shortfall")
	}
	if !errors.Is(err, product.ErrInsufficientStock) {
		t.Fatalf("shortfall should match ErrInsufficientStock, got %v", err)
	}

	var shortfall *product.StockShortfallError
	if !errors.As(err, &shortfall) {
		t.Fatalf("expected *StockShortfallError, got %T", err)
	}
	if shortfall.Requested != 6 || shortfall.CurrentStock != 5 {
		t.Errorf("shortfall detail = %+v", shortfall)
	}

	// A failed reservation must leave stock untouched.
	stock, _ := guard.Stock(context.Background(), "p1")
	if stock != 5 {
		t.Errorf("stock after failed reservation = %d, want 5", stock)
	}
}

func TestCheckAndReserveInvalidQuantity(t *testing.T) {
	guard := NewGuard(newStore(t, "p1", 5), nil)

	for _, q := range []int{0, -1} {
		if _, err := guard.CheckAndReserve(context.Background(), "p1", q); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
}

func TestCheckAndReserveUnknownProduct(t *testing.T) {
	guard := NewGuard(memory.NewProductRepository(), nil)

	if _, err := guard.CheckAndReserve(context.Background(), "nope", 1); !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReleaseRestoresStock(t *testing.T) {
	store := newStore(t, "p1", 5)
	guard := NewGuard(store, nil)

	if _, err := guard.CheckAndReserve(context.Background(), "p1", 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := guard.Release(context.Background(), "p1", 3); err != nil {
		t.Fatalf("release: %v", err)
	}

	stock, _ := guard.Stock(context.Background(), "p1")
	if stock != 5 {
		t.Errorf("stock after reserve+release = %d, want 5", stock)
	}
}

func TestRollbackToleratesDeletedProduct(t *testing.T) {
	store := newStore(t, "p1", 5)
	guard := NewGuard(store, nil)

	res, err := guard.CheckAndReserve(context.Background(), "p1", 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := store.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Must not panic or error loudly; there is nothing left to restore.
	guard.Rollback(context.Background(), res)
	guard.Rollback(context.Background(), nil)
}

func TestConcurrentReservationsNeverOversell(t *testing.T) {
	const stock = 10
	const workers = 50

	store := newStore(t, "p1", stock)
	guard := NewGuard(store, nil)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := guard.CheckAndReserve(context.Background(), "p1", 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, product.ErrInsufficientStock):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != stock {
		t.Errorf("granted %d reservations for %d units", succeeded, stock)
	}
	remaining, _ := guard.Stock(context.Background(), "p1")
	if remaining != 0 {
		t.Errorf("remaining stock = %d, want 0", remaining)
	}
}

func TestConcurrentReserveAndReleaseConserveStock(t *testing.T) {
	const stock = 100
	const rounds = 200

	store := newStore(t, "p1", stock)
	guard := NewGuard(store, nil)

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := guard.CheckAndReserve(context.Background(), "p1", 2)
			if err != nil {
				return
			}
			guard.Rollback(context.Background(), res)
		}()
	}
	wg.Wait()

	remaining, err := guard.Stock(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Stock: %v", err)
	}
	if remaining != stock {
		t.Errorf("stock drifted to %d after matched reserve/release pairs, want %d", remaining, stock)
	}
}
