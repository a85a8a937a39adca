package product

import (
	"context"
)

type ListOptions struct {
	Page     int
	Limit    int
	Category string
}

type Page struct {
	Products    []*Product
	Total       int
	CurrentPage int
	TotalPages  int
}

type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, opts ListOptions) (*Page, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// StockStore is the authoritative home of product stock. Implementations
// must make AdjustStock atomic per product: the availability check and the
// write are one operation relative to concurrent adjustments on the same
// product.
type StockStore interface {
	// Stock returns the current stock, or ErrNotFound.
	Stock(ctx context.Context, id string) (int, error)
	// AdjustStock applies delta and returns the resulting stock. A negative
	// delta that would drive stock below zero fails with
	// *StockShortfallError and leaves the stock unchanged.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
	// SetStock seeds or replaces the tracked stock for a product.
	SetStock(ctx context.Context, id string, stock int) error
	// Remove stops tracking the product.
	Remove(ctx context.Context, id string) error
}
