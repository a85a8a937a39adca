package cart

import (
	"github.com/shopcore/shopcore/internal/domain/product"
)

// SummaryItem is one summarized line. Product is nil and Unavailable true
// when the referenced product no longer resolves; such lines contribute
// nothing to the total price but still appear in the summary.
type SummaryItem struct {
	ProductID   string
	Quantity    int
	Product     *product.Product
	Unavailable bool
	LineTotal   float64
}

// Summary is the derived view of a cart: totals are recomputed from line
// items and live product prices on every call, never stored.
type Summary struct {
	CartID     string
	Items      []SummaryItem
	TotalItems int
	TotalPrice float64
}

// Summarize computes the cart snapshot from the supplied product view. Pure:
// no stock or authorization logic belongs here.
func Summarize(c *Cart, products map[string]*product.Product) Summary {
	s := Summary{
		CartID: c.ID,
		Items:  make([]SummaryItem, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		line := SummaryItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
		if p := products[it.ProductID]; p != nil {
			line.Product = p
			line.LineTotal = float64(it.Quantity) * p.Price
		} else {
			line.Unavailable = true
		}
		s.Items = append(s.Items, line)
		s.TotalItems += it.Quantity
		s.TotalPrice += line.LineTotal
	}
	return s
}
