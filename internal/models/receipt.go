package models

import (
	"time"

	"github.com/google/uuid"

	"zonekids/internal/money"
)

const (
	ReceiptStatusPending   = "pending"
	ReceiptStatusPaid      = "paid"
	ReceiptStatusCancelled = "cancelled"
)

// Receipt is a purchase transaction with a human-readable number and
// payment details. It follows the same lifecycle as an order, with
// "paid" in place of "completed".
type Receipt struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	Number        string     `json:"number" db:"number"`
	Subtotal      int64      `json:"subtotal" db:"subtotal"`
	Tax           int64      `json:"tax" db:"tax"`
	Total         int64      `json:"total" db:"total"`
	Status        string     `json:"status" db:"status"`
	PaymentMethod *string    `json:"payment_method" db:"payment_method"`
	PaidAt        *time.Time `json:"paid_at" db:"paid_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`

	Items []*ReceiptItem `json:"items" db:"-"`
}

func NewReceipt(userID uuid.UUID, number string) *Receipt {
	return &Receipt{
		ID:     uuid.New(),
		UserID: userID,
		Number: number,
		Status: ReceiptStatusPending,
	}
}

// AddItem appends a line item and recomputes the totals. Items may only
// be attached while the receipt is pending.
func (r *Receipt) AddItem(item *ReceiptItem) error {
	if r.Status != ReceiptStatusPending {
		return &InvalidStateError{Entity: "receipt", Current: r.Status, Operation: "add item to"}
	}
	item.ReceiptID = r.ID
	r.Items = append(r.Items, item)
	r.Recalculate()
	return nil
}

// RemoveItem detaches a line item by id and recomputes the totals. The
// caller deletes the row in the same transaction.
func (r *Receipt) RemoveItem(itemID uuid.UUID) (*ReceiptItem, error) {
	if r.Status != ReceiptStatusPending {
		return nil, &InvalidStateError{Entity: "receipt", Current: r.Status, Operation: "remove item from"}
	}
	for i, item := range r.Items {
		if item.ID == itemID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			r.Recalculate()
			return item, nil
		}
	}
	return nil, NewNotFoundError("receipt item", itemID)
}

// Recalculate recomputes subtotal, tax and total from the line items.
func (r *Receipt) Recalculate() {
	var subtotal int64
	for _, item := range r.Items {
		subtotal += item.Subtotal()
	}
	r.Subtotal = subtotal
	r.Tax = money.VAT(subtotal)
	r.Total = subtotal + r.Tax
}

// Pay marks a pending receipt as paid, recording the payment method and
// timestamp.
func (r *Receipt) Pay(method string, at time.Time) error {
	if r.Status != ReceiptStatusPending {
		return &InvalidStateError{Entity: "receipt", Current: r.Status, Operation: "pay"}
	}
	r.Status = ReceiptStatusPaid
	r.PaymentMethod = &method
	r.PaidAt = &at
	return nil
}

// Cancel marks the receipt as cancelled. Cancelling an already
// cancelled receipt is rejected so stock is never restored twice.
func (r *Receipt) Cancel() error {
	if r.Status == ReceiptStatusCancelled {
		return &InvalidStateError{Entity: "receipt", Current: r.Status, Operation: "cancel"}
	}
	r.Status = ReceiptStatusCancelled
	return nil
}
