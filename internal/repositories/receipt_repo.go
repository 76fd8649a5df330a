package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zonekids/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	CreateItem(ctx context.Context, item *models.ReceiptItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	// GetByIDForUpdate locks the receipt row for the remainder of the
	// surrounding transaction so concurrent state changes serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	GetByNumber(ctx context.Context, number string) (*models.Receipt, error)
	Update(ctx context.Context, receipt *models.Receipt) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	List(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Receipt, error)
	// ListStalePending returns pending receipts created before the
	// cutoff, oldest first. Used by the expiry job.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*models.Receipt, error)
	// NextNumber atomically advances the per-day counter and returns a
	// receipt number formatted BOL-YYYYMMDD-NNNNN. Safe under
	// concurrent settlement.
	NextNumber(ctx context.Context, day time.Time) (string, error)
}

type receiptRepo struct {
	db DBTX
}

func NewReceiptRepo(db DBTX) ReceiptRepository {
	return &receiptRepo{db: db}
}

const receiptColumns = `id, user_id, number, subtotal, tax, total, status, payment_method, paid_at, created_at, updated_at`

func (r *receiptRepo) Create(ctx context.Context, receipt *models.Receipt) error {
	query := `
		INSERT INTO receipts (id, user_id, number, subtotal, tax, total, status, payment_method, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	if _, err := r.db.Exec(ctx, query, receipt.ID, receipt.UserID, receipt.Number, receipt.Subtotal, receipt.Tax, receipt.Total, receipt.Status, receipt.PaymentMethod, receipt.PaidAt); err != nil {
		return err
	}
	for _, item := range receipt.Items {
		if err := r.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *receiptRepo) CreateItem(ctx context.Context, item *models.ReceiptItem) error {
	query := `
		INSERT INTO receipt_items (id, receipt_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.ReceiptID, item.ProductID, item.Quantity, item.UnitPrice)
	return err
}

func (r *receiptRepo) scanReceipt(ctx context.Context, row pgx.Row) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	err := row.Scan(&receipt.ID, &receipt.UserID, &receipt.Number, &receipt.Subtotal, &receipt.Tax, &receipt.Total, &receipt.Status, &receipt.PaymentMethod, &receipt.PaidAt, &receipt.CreatedAt, &receipt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, receipt.ID)
	if err != nil {
		return nil, err
	}
	receipt.Items = items
	return receipt, nil
}

func (r *receiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1`
	return r.scanReceipt(ctx, r.db.QueryRow(ctx, query, id))
}

func (r *receiptRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1 FOR UPDATE`
	return r.scanReceipt(ctx, r.db.QueryRow(ctx, query, id))
}

func (r *receiptRepo) GetByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE number = $1`
	return r.scanReceipt(ctx, r.db.QueryRow(ctx, query, number))
}

func (r *receiptRepo) listItems(ctx context.Context, receiptID uuid.UUID) ([]*models.ReceiptItem, error) {
	query := `
		SELECT id, receipt_id, product_id, quantity, unit_price, created_at
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ReceiptItem
	for rows.Next() {
		item := &models.ReceiptItem{}
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *receiptRepo) Update(ctx context.Context, receipt *models.Receipt) error {
	query := `
		UPDATE receipts
		SET subtotal = $1, tax = $2, total = $3, status = $4, payment_method = $5, paid_at = $6, updated_at = NOW()
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, receipt.Subtotal, receipt.Tax, receipt.Total, receipt.Status, receipt.PaymentMethod, receipt.PaidAt, receipt.ID)
	return err
}

func (r *receiptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM receipt_items WHERE receipt_id = $1`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	return err
}

func (r *receiptRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM receipt_items WHERE id = $1`, itemID)
	return err
}

func (r *receiptRepo) List(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Receipt, error) {
	queryBase := `SELECT ` + receiptColumns + ` FROM receipts WHERE 1=1`
	args := []any{}
	conditionCount := 0

	if userID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND user_id = $%d`, conditionCount)
		args = append(args, *userID)
	}
	if status != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND status = $%d`, conditionCount)
		args = append(args, *status)
	}

	queryBase += ` ORDER BY created_at DESC`
	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, limit)
	conditionCount++
	queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
	args = append(args, offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func (r *receiptRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*models.Receipt, error) {
	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReceipts(rows)
}

// NextNumber uses an upsert on the per-day sequence row so two
// concurrent settlements can never draw the same number.
func (r *receiptRepo) NextNumber(ctx context.Context, day time.Time) (string, error) {
	dayKey := day.Format("20060102")

	query := `
		WITH upsert AS (
			INSERT INTO receipt_sequences (day, last_number)
			VALUES ($1, 1)
			ON CONFLICT (day)
			DO UPDATE SET last_number = receipt_sequences.last_number + 1
			RETURNING last_number
		)
		SELECT last_number FROM upsert
	`
	var sequenceNum int
	if err := r.db.QueryRow(ctx, query, dayKey).Scan(&sequenceNum); err != nil {
		return "", fmt.Errorf("failed to generate receipt sequence: %w", err)
	}

	return fmt.Sprintf("BOL-%s-%05d", dayKey, sequenceNum), nil
}

func collectReceipts(rows pgx.Rows) ([]*models.Receipt, error) {
	var receipts []*models.Receipt
	for rows.Next() {
		receipt := &models.Receipt{}
		if err := rows.Scan(&receipt.ID, &receipt.UserID, &receipt.Number, &receipt.Subtotal, &receipt.Tax, &receipt.Total, &receipt.Status, &receipt.PaymentMethod, &receipt.PaidAt, &receipt.CreatedAt, &receipt.UpdatedAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}
