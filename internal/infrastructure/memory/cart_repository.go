package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/shopcore/shopcore/internal/domain/cart"
)

// CartRepository keeps carts in memory with a per-cart version that backs
// the service's optimistic concurrency: SaveItems only lands when the
// caller saw the latest version.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{
		carts: make(map[string]*domain.Cart),
	}
}

func (r *CartRepository) Get(ctx context.Context, id string) (*domain.Cart, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *CartRepository) Insert(ctx context.Context, c *domain.Cart) error {
	_ = ctx
	if c == nil || c.ID == "" {
		return fmt.Errorf("cart repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.carts[c.ID]; exists {
		return domain.ErrConflict
	}
	r.carts[c.ID] = c.Clone()
	return nil
}

func (r *CartRepository) SaveItems(ctx context.Context, id string, items []domain.Item, expectedVersion uint64) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Version != expectedVersion {
		return domain.ErrConflict
	}

	c.Items = make([]domain.Item, len(items))
	copy(c.Items, items)
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *CartRepository) FindByProduct(ctx context.Context, productID string) ([]*domain.Cart, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Cart
	for _, c := range r.carts {
		if c.Quantity(productID) > 0 {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}
