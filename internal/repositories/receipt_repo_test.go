package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonekids/internal/models"
)

func receiptRow(id, userID uuid.UUID, number, status string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "user_id", "number", "subtotal", "tax", "total", "status", "payment_method", "paid_at", "created_at", "updated_at"}).
		AddRow(id, userID, number, int64(2500), int64(475), int64(2975), status, nil, nil, now, now)
}

func emptyReceiptItemRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "receipt_id", "product_id", "quantity", "unit_price", "created_at"})
}

func TestReceiptRepoNextNumberFormat(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReceiptRepo(mock)
	day := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO receipt_sequences`).
		WithArgs("20260831").
		WillReturnRows(pgxmock.NewRows([]string{"last_number"}).AddRow(1))

	number, err := repo.NextNumber(context.Background(), day)
	assert.NoError(t, err)
	assert.Equal(t, "BOL-20260831-00001", number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepoNextNumberAdvances(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReceiptRepo(mock)
	day := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)

	// The upsert returns whatever the per-day counter advanced to; the
	// formatted number pads it to five digits.
	mock.ExpectQuery(`ON CONFLICT \(day\)`).
		WithArgs("20260831").
		WillReturnRows(pgxmock.NewRows([]string{"last_number"}).AddRow(42))

	number, err := repo.NextNumber(context.Background(), day)
	assert.NoError(t, err)
	assert.Equal(t, "BOL-20260831-00042", number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepoGetByNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReceiptRepo(mock)
	id := uuid.New()
	userID := uuid.New()
	number := "BOL-20260831-00007"

	mock.ExpectQuery(`FROM receipts WHERE number = \$1`).
		WithArgs(number).
		WillReturnRows(receiptRow(id, userID, number, models.ReceiptStatusPending))
	mock.ExpectQuery(`FROM receipt_items`).
		WithArgs(id).
		WillReturnRows(emptyReceiptItemRows())

	receipt, err := repo.GetByNumber(context.Background(), number)
	assert.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, number, receipt.Number)
	assert.Equal(t, userID, receipt.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepoGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReceiptRepo(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM receipts WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	receipt, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, receipt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepoListStalePending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReceiptRepo(mock)
	cutoff := time.Now().Add(-48 * time.Hour)

	rows := pgxmock.NewRows([]string{"id", "user_id", "number", "subtotal", "tax", "total", "status", "payment_method", "paid_at", "created_at", "updated_at"})
	for i := 1; i <= 2; i++ {
		rows.AddRow(uuid.New(), uuid.New(), fmt.Sprintf("BOL-20260829-%05d", i), int64(1000), int64(190), int64(1190),
			models.ReceiptStatusPending, nil, nil, cutoff.Add(-time.Hour), cutoff.Add(-time.Hour))
	}

	mock.ExpectQuery(`WHERE status = 'pending' AND created_at < \$1`).
		WithArgs(cutoff, 100).
		WillReturnRows(rows)

	stale, err := repo.ListStalePending(context.Background(), cutoff, 100)
	assert.NoError(t, err)
	assert.Len(t, stale, 2)
	for _, receipt := range stale {
		assert.Equal(t, models.ReceiptStatusPending, receipt.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepoListFiltersByUserAndStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReceiptRepo(mock)
	userID := uuid.New()
	status := models.ReceiptStatusPaid

	mock.ExpectQuery(`AND user_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(userID, status, 20, 0).
		WillReturnRows(receiptRow(uuid.New(), userID, "BOL-20260831-00009", status))

	receipts, err := repo.List(context.Background(), &userID, &status, 20, 0)
	assert.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, status, receipts[0].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}
