package product

import "time"

// DeletedEvent is emitted when a product is removed from the catalog. Cart
// pruning subscribes to it so no line item is left dangling.
type DeletedEvent struct {
	ProductID  string
	OwnerID    string
	OccurredAt time.Time
}

func (DeletedEvent) EventName() string { return "product.deleted" }

func NewDeletedEvent(p *Product) DeletedEvent {
	return DeletedEvent{
		ProductID:  p.ID,
		OwnerID:    p.OwnerID,
		OccurredAt: time.Now().UTC(),
	}
}
