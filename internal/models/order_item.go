package models

import (
	"time"

	"github.com/google/uuid"

	"zonekids/internal/money"
)

// OrderItem is one product line within an order. UnitPrice is the
// catalog price captured at purchase time; later catalog changes never
// touch it.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Subtotal is quantity times the snapshotted unit price.
func (i *OrderItem) Subtotal() int64 {
	return money.LineSubtotal(i.Quantity, i.UnitPrice)
}
