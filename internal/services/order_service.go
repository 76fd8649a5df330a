package services

import (
	"context"
	"fmt"
	"log"

	"zonekids/internal/caching"
	"zonekids/internal/models"
	"zonekids/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderServiceInterface defines the settlement operations for orders.
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, lines []LineRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Order, error)
	CompleteOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type orderService struct {
	db    repositories.DBTX
	users repositories.UserRepository
	cache caching.CacheService
}

// NewOrderService creates a new order service instance.
func NewOrderService(db repositories.DBTX, users repositories.UserRepository, cache caching.CacheService) OrderServiceInterface {
	return &orderService{db: db, users: users, cache: cache}
}

// CreateOrder settles a cart into a persisted order: it validates the
// buyer, assembles every line (price snapshot, availability check),
// then decrements stock and writes the order in one transaction. Any
// failure rolls the whole settlement back.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, lines []LineRequest) (*models.Order, error) {
	if _, err := resolveBuyer(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &models.ValidationError{Field: "items", Message: "order must contain at least one item"}
	}

	var order *models.Order
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		products := repositories.NewProductRepo(tx)
		ledger := NewStockLedger(products)

		order = models.NewOrder(userID)
		for _, line := range lines {
			product, err := assembleLine(ctx, products, ledger, line)
			if err != nil {
				return err
			}
			item := &models.OrderItem{
				ID:        uuid.New(),
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.UnitPrice,
			}
			if err := order.AddItem(item); err != nil {
				return err
			}
		}

		for _, item := range order.Items {
			if err := ledger.Decrement(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return repositories.NewOrderRepo(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, order.Items)
	return order, nil
}

// GetOrderByID retrieves an order with its line items.
func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := repositories.NewOrderRepo(s.db).GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, models.NewNotFoundError("order", orderID)
	}
	return order, nil
}

// ListOrders lists orders, optionally filtered by buyer and status.
func (s *orderService) ListOrders(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Order, error) {
	return repositories.NewOrderRepo(s.db).List(ctx, userID, status, limit, offset)
}

// CompleteOrder transitions a pending order to completed.
func (s *orderService) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		orders := repositories.NewOrderRepo(tx)
		var err error
		order, err = orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		if order == nil {
			return models.NewNotFoundError("order", orderID)
		}
		if err := order.Complete(); err != nil {
			return err
		}
		return orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels an order and restores the reserved stock of every
// line item in the same transaction as the state change.
func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		orders := repositories.NewOrderRepo(tx)
		ledger := NewStockLedger(repositories.NewProductRepo(tx))

		var err error
		order, err = orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		if order == nil {
			return models.NewNotFoundError("order", orderID)
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := ledger.Increment(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, order.Items)
	return order, nil
}

// RemoveOrderItem detaches one line item from a pending order,
// restoring its reserved stock and recomputing the totals.
func (s *orderService) RemoveOrderItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	var removed *models.OrderItem
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		orders := repositories.NewOrderRepo(tx)
		ledger := NewStockLedger(repositories.NewProductRepo(tx))

		var err error
		order, err = orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		if order == nil {
			return models.NewNotFoundError("order", orderID)
		}
		removed, err = order.RemoveItem(itemID)
		if err != nil {
			return err
		}
		if err := ledger.Increment(ctx, removed.ProductID, removed.Quantity); err != nil {
			return err
		}
		if err := orders.DeleteItem(ctx, itemID); err != nil {
			return fmt.Errorf("failed to delete order item: %w", err)
		}
		return orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, []*models.OrderItem{removed})
	return order, nil
}

// DeleteOrder removes an order and its line items. Administrative purge;
// no stock is restored.
func (s *orderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	repo := repositories.NewOrderRepo(s.db)
	order, err := repo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return models.NewNotFoundError("order", orderID)
	}
	return repo.Delete(ctx, orderID)
}

// invalidateProducts drops cached product entries whose stock moved.
// Best effort; the cache is read-through and heals itself.
func (s *orderService) invalidateProducts(ctx context.Context, items []*models.OrderItem) {
	if s.cache == nil {
		return
	}
	for _, item := range items {
		if err := s.cache.DeleteProduct(ctx, item.ProductID); err != nil {
			log.Printf("Failed to invalidate product cache for %s: %v", item.ProductID, err)
		}
	}
}
