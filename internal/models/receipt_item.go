package models

import (
	"time"

	"github.com/google/uuid"

	"zonekids/internal/money"
)

// ReceiptItem is one product line within a receipt, with the unit price
// frozen at purchase time.
type ReceiptItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ReceiptID uuid.UUID `json:"receipt_id" db:"receipt_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (i *ReceiptItem) Subtotal() int64 {
	return money.LineSubtotal(i.Quantity, i.UnitPrice)
}
