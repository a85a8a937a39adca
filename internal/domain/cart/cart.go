package cart

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("cart: not found")
	ErrNotOwner        = errors.New("cart: not owned by actor")
	ErrInvalidQuantity = errors.New("cart: quantity cannot be negative")
	ErrConflict        = errors.New("cart: concurrent modification")
)

// Item is one line of a cart: a weak product reference plus a quantity that
// is always positive while the line exists.
type Item struct {
	ProductID string
	Quantity  int
}

// Cart is the aggregate. Items keep insertion order and never hold two
// lines for the same product. Version backs the optimistic save.
type Cart struct {
	ID        string
	OwnerID   string
	Items     []Item
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, ownerID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        id,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Quantity returns the current quantity for the product, zero when the cart
// holds no line for it.
func (c *Cart) Quantity(productID string) int {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

// SetQuantity merges the quantity into the product's single line item:
// insert when absent, overwrite when present, drop the line at zero. Order
// of the remaining lines is preserved. Negative quantities are rejected.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		c.RemoveLine(productID)
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.touch()
			return nil
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	c.touch()
	return nil
}

// RemoveLine drops the product's line item if present.
func (c *Cart) RemoveLine(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = make([]Item, len(c.Items))
	copy(clone.Items, c.Items)
	return &clone
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

type Repository interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Insert(ctx context.Context, c *Cart) error
	// SaveItems persists the cart's line items when expectedVersion still
	// matches the stored cart, bumping the version; fails with ErrConflict
	// otherwise.
	SaveItems(ctx context.Context, id string, items []Item, expectedVersion uint64) error
	// FindByProduct returns every cart holding a line for the product.
	FindByProduct(ctx context.Context, productID string) ([]*Cart, error)
}
