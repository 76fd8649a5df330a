package repositories

import (
	"context"
	"errors"
	"fmt"

	"zonekids/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItem(ctx context.Context, item *models.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// GetByIDForUpdate locks the order row for the remainder of the
	// surrounding transaction so concurrent state changes serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	List(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Order, error)
}

type orderRepo struct {
	db DBTX
}

func NewOrderRepo(db DBTX) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, user_id, subtotal, tax, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	if _, err := r.db.Exec(ctx, query, order.ID, order.UserID, order.Subtotal, order.Tax, order.Total, order.Status); err != nil {
		return err
	}
	for _, item := range order.Items {
		if err := r.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepo) CreateItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice)
	return err
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT id, user_id, subtotal, tax, total, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *orderRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT id, user_id, subtotal, tax, total, status, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`
	return r.getOne(ctx, query, id)
}

func (r *orderRepo) getOne(ctx context.Context, query string, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.UserID, &order.Subtotal, &order.Tax, &order.Total, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET subtotal = $1, tax = $2, total = $3, status = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, order.Subtotal, order.Tax, order.Total, order.Status, order.ID)
	return err
}

// Delete removes the order and its line items. Deletion cascades
// explicitly rather than through the schema so the order of operations
// is visible here.
func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func (r *orderRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	return err
}

func (r *orderRepo) List(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Order, error) {
	queryBase := `
		SELECT id, user_id, subtotal, tax, total, status, created_at, updated_at
		FROM orders
		WHERE 1=1
	`
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

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.Subtotal, &order.Tax, &order.Total, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
