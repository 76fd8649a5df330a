package models

import (
	"time"

	"github.com/google/uuid"

	"zonekids/internal/money"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order is a purchase transaction owning its line items. Totals are
// recomputed from the items; they are never set directly.
type Order struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Subtotal  int64     `json:"subtotal" db:"subtotal"`
	Tax       int64     `json:"tax" db:"tax"`
	Total     int64     `json:"total" db:"total"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Items []*OrderItem `json:"items" db:"-"`
}

func NewOrder(userID uuid.UUID) *Order {
	return &Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: OrderStatusPending,
	}
}

// AddItem appends a line item and recomputes the totals. Items may only
// be attached while the order is pending.
func (o *Order) AddItem(item *OrderItem) error {
	if o.Status != OrderStatusPending {
		return &InvalidStateError{Entity: "order", Current: o.Status, Operation: "add item to"}
	}
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.Recalculate()
	return nil
}

// RemoveItem detaches a line item by id and recomputes the totals. The
// caller is responsible for deleting the row in the same transaction.
func (o *Order) RemoveItem(itemID uuid.UUID) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, &InvalidStateError{Entity: "order", Current: o.Status, Operation: "remove item from"}
	}
	for i, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.Recalculate()
			return item, nil
		}
	}
	return nil, NewNotFoundError("order item", itemID)
}

// Recalculate recomputes subtotal, tax and total from the line items.
func (o *Order) Recalculate() {
	var subtotal int64
	for _, item := range o.Items {
		subtotal += item.Subtotal()
	}
	o.Subtotal = subtotal
	o.Tax = money.VAT(subtotal)
	o.Total = subtotal + o.Tax
}

// Complete marks a pending order as completed.
func (o *Order) Complete() error {
	if o.Status != OrderStatusPending {
		return &InvalidStateError{Entity: "order", Current: o.Status, Operation: "complete"}
	}
	o.Status = OrderStatusCompleted
	return nil
}

// Cancel marks the order as cancelled. Cancelling an already cancelled
// order is rejected so stock is never restored twice.
func (o *Order) Cancel() error {
	if o.Status == OrderStatusCancelled {
		return &InvalidStateError{Entity: "order", Current: o.Status, Operation: "cancel"}
	}
	o.Status = OrderStatusCancelled
	return nil
}
