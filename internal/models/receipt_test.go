package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestReceiptItem(quantity int, unitPrice int64) *ReceiptItem {
	return &ReceiptItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
}

func TestNewReceiptStartsPendingWithNumber(t *testing.T) {
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00001")

	assert.Equal(t, ReceiptStatusPending, receipt.Status)
	assert.Equal(t, "BOL-20260831-00001", receipt.Number)
	assert.Nil(t, receipt.PaymentMethod)
	assert.Nil(t, receipt.PaidAt)
}

func TestReceiptTotalsRoundTrip(t *testing.T) {
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00002")
	assert.NoError(t, receipt.AddItem(newTestReceiptItem(1, 2500)))

	assert.Equal(t, int64(2500), receipt.Subtotal)
	assert.Equal(t, int64(475), receipt.Tax)
	assert.Equal(t, int64(2975), receipt.Total)
}

func TestReceiptPayRecordsMethodAndTime(t *testing.T) {
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00003")
	assert.NoError(t, receipt.AddItem(newTestReceiptItem(2, 1500)))

	paidAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.NoError(t, receipt.Pay("card", paidAt))

	assert.Equal(t, ReceiptStatusPaid, receipt.Status)
	if assert.NotNil(t, receipt.PaymentMethod) {
		assert.Equal(t, "card", *receipt.PaymentMethod)
	}
	if assert.NotNil(t, receipt.PaidAt) {
		assert.True(t, receipt.PaidAt.Equal(paidAt))
	}
}

func TestReceiptPayTwiceRejected(t *testing.T) {
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00004")
	assert.NoError(t, receipt.Pay("cash", time.Now()))

	err := receipt.Pay("card", time.Now())
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	assert.Equal(t, ReceiptStatusPaid, stateErr.Current)
}

func TestReceiptPayAfterCancelRejected(t *testing.T) {
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00005")
	assert.NoError(t, receipt.Cancel())

	err := receipt.Pay("cash", time.Now())
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestReceiptCancelFromPaidAllowed(t *testing.T) {
	// A paid receipt can still be cancelled (refund path); only a second
	// cancel is rejected.
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00006")
	assert.NoError(t, receipt.Pay("card", time.Now()))

	assert.NoError(t, receipt.Cancel())
	assert.Equal(t, ReceiptStatusCancelled, receipt.Status)

	err := receipt.Cancel()
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestReceiptAddItemRejectedAfterPayment(t *testing.T) {
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00007")
	assert.NoError(t, receipt.AddItem(newTestReceiptItem(1, 100)))
	assert.NoError(t, receipt.Pay("cash", time.Now()))

	err := receipt.AddItem(newTestReceiptItem(1, 100))
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestReceiptRemoveItemRecalculates(t *testing.T) {
	receipt := NewReceipt(uuid.New(), "BOL-20260831-00008")
	keep := newTestReceiptItem(1, 2000)
	drop := newTestReceiptItem(3, 500)
	assert.NoError(t, receipt.AddItem(keep))
	assert.NoError(t, receipt.AddItem(drop))

	removed, err := receipt.RemoveItem(drop.ID)
	assert.NoError(t, err)
	assert.Equal(t, drop.ID, removed.ID)
	assert.Equal(t, int64(2000), receipt.Subtotal)
	assert.Equal(t, int64(380), receipt.Tax)
	assert.Equal(t, int64(2380), receipt.Total)
}
