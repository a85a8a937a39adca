package product

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrCodeExists        = errors.New("product: code already exists")
	ErrInvalidPrice      = errors.New("product: price must be zero or greater")
	ErrInvalidStock      = errors.New("product: stock cannot be negative")
	ErrMissingFields     = errors.New("product: required fields missing")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// OwnerPlatform marks products not created by a premium seller.
const OwnerPlatform = "platform"

// StockShortfallError reports a reservation that exceeds available stock.
// CurrentStock lets the caller surface the shortfall to the client.
type StockShortfallError struct {
	ProductID    string
	Requested    int
	CurrentStock int
}

func (e *StockShortfallError) Error() string {
	return fmt.Sprintf("product: insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.CurrentStock)
}

func (e *StockShortfallError) Is(target error) bool { return target == ErrInsufficientStock }

type Product struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Code        string
	Category    string
	Price       float64
	Stock       int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(id, ownerID, title, code, category string, price float64, stock int) (*Product, error) {
	if id == "" || title == "" || code == "" || category == "" {
		return nil, ErrMissingFields
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	if ownerID == "" {
		ownerID = OwnerPlatform
	}
	now := time.Now().UTC()
	return &Product{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		Code:      code,
		Category:  category,
		Price:     price,
		Stock:     stock,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update carries the mutable fields of a product. Stock is deliberately
// absent: stock moves only through the inventory guard.
type Update struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Code        *string
	Active      *bool
}

func (p *Product) Apply(u Update) error {
	if u.Price != nil && *u.Price < 0 {
		return ErrInvalidPrice
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Code != nil {
		p.Code = *u.Code
	}
	if u.Active != nil {
		p.Active = *u.Active
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
