package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/shopcore/shopcore/internal/domain/product"
)

// ProductRepository is an in-memory catalog that doubles as the stock
// store: all stock reads-then-writes happen under one lock, which makes
// AdjustStock atomic per product.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	codes    map[string]string // code -> product id
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
		codes:    make(map[string]string),
	}
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) List(ctx context.Context, opts domain.ListOptions) (*domain.Page, error) {
	_ = ctx

	r.mu.RLock()
	all := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		all = append(all, p.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 10
	}

	total := len(all)
	pages := (total + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &domain.Page{
		Products:    all[start:end],
		Total:       total,
		CurrentPage: page,
		TotalPages:  pages,
	}, nil
}

func (r *ProductRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.codes[code]
	return ok, nil
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; exists {
		return fmt.Errorf("product repository: duplicate id %s", p.ID)
	}
	if _, exists := r.codes[p.Code]; exists {
		return domain.ErrCodeExists
	}

	r.products[p.ID] = p.Clone()
	r.codes[p.Code] = p.ID
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.products[p.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if p.Code != old.Code {
		if owner, taken := r.codes[p.Code]; taken && owner != p.ID {
			return domain.ErrCodeExists
		}
		delete(r.codes, old.Code)
		r.codes[p.Code] = p.ID
	}

	// Stock is owned by the stock store side of this repository; a catalog
	// update never touches it.
	next := p.Clone()
	next.Stock = old.Stock
	r.products[p.ID] = next
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.codes, p.Code)
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) Stock(ctx context.Context, id string) (int, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.Stock, nil
}

// AdjustStock applies delta under the write lock: the availability check
// and the write cannot interleave with another adjustment on the same
// product.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	next := p.Stock + delta
	if next < 0 {
		return 0, &domain.StockShortfallError{
			ProductID:    id,
			Requested:    -delta,
			CurrentStock: p.Stock,
		}
	}
	p.Stock = next
	return next, nil
}

func (r *ProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	_ = ctx
	if stock < 0 {
		return domain.ErrInvalidStock
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

// Remove is a no-op here: deleting the catalog entry already removes the
// tracked stock.
func (r *ProductRepository) Remove(ctx context.Context, id string) error {
	_ = ctx
	_ = id
	return nil
}
