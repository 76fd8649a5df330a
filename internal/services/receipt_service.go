package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"zonekids/internal/caching"
	"zonekids/internal/models"
	"zonekids/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReceiptServiceInterface defines the settlement operations for
// receipts: numbered purchase transactions with payment tracking.
type ReceiptServiceInterface interface {
	CreateReceipt(ctx context.Context, userID uuid.UUID, lines []LineRequest) (*models.Receipt, error)
	GetReceiptByID(ctx context.Context, receiptID uuid.UUID) (*models.Receipt, error)
	GetReceiptByNumber(ctx context.Context, number string) (*models.Receipt, error)
	ListReceipts(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Receipt, error)
	PayReceipt(ctx context.Context, receiptID uuid.UUID, paymentMethod string) (*models.Receipt, error)
	CancelReceipt(ctx context.Context, receiptID uuid.UUID) (*models.Receipt, error)
	RemoveReceiptItem(ctx context.Context, receiptID, itemID uuid.UUID) (*models.Receipt, error)
	DeleteReceipt(ctx context.Context, receiptID uuid.UUID) error
	// ExpireStalePending cancels pending receipts older than ttl,
	// restoring their reserved stock. Returns how many were cancelled.
	ExpireStalePending(ctx context.Context, ttl time.Duration, limit int) (int, error)
}

type receiptService struct {
	db    repositories.DBTX
	users repositories.UserRepository
	cache caching.CacheService
}

// NewReceiptService creates a new receipt service instance.
func NewReceiptService(db repositories.DBTX, users repositories.UserRepository, cache caching.CacheService) ReceiptServiceInterface {
	return &receiptService{db: db, users: users, cache: cache}
}

// CreateReceipt settles a cart into a numbered receipt. The assembly
// pass only checks and locks; stock is decremented after every line has
// assembled, and the number, items and header all commit together.
func (s *receiptService) CreateReceipt(ctx context.Context, userID uuid.UUID, lines []LineRequest) (*models.Receipt, error) {
	if _, err := resolveBuyer(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &models.ValidationError{Field: "items", Message: "receipt must contain at least one item"}
	}

	var receipt *models.Receipt
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		receipts := repositories.NewReceiptRepo(tx)
		products := repositories.NewProductRepo(tx)
		ledger := NewStockLedger(products)

		number, err := receipts.NextNumber(ctx, time.Now())
		if err != nil {
			return err
		}

		receipt = models.NewReceipt(userID, number)
		for _, line := range lines {
			product, err := assembleLine(ctx, products, ledger, line)
			if err != nil {
				return err
			}
			item := &models.ReceiptItem{
				ID:        uuid.New(),
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.UnitPrice,
			}
			if err := receipt.AddItem(item); err != nil {
				return err
			}
		}

		for _, item := range receipt.Items {
			if err := ledger.Decrement(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return receipts.Create(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, receipt.Items)
	return receipt, nil
}

// GetReceiptByID retrieves a receipt with its line items.
func (s *receiptService) GetReceiptByID(ctx context.Context, receiptID uuid.UUID) (*models.Receipt, error) {
	receipt, err := repositories.NewReceiptRepo(s.db).GetByID(ctx, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt == nil {
		return nil, models.NewNotFoundError("receipt", receiptID)
	}
	return receipt, nil
}

// GetReceiptByNumber retrieves a receipt by its display number.
func (s *receiptService) GetReceiptByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	receipt, err := repositories.NewReceiptRepo(s.db).GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt == nil {
		return nil, &models.NotFoundError{Resource: "receipt", ID: number}
	}
	return receipt, nil
}

// ListReceipts lists receipts, optionally filtered by buyer and status.
func (s *receiptService) ListReceipts(ctx context.Context, userID *uuid.UUID, status *string, limit, offset int) ([]*models.Receipt, error) {
	return repositories.NewReceiptRepo(s.db).List(ctx, userID, status, limit, offset)
}

// PayReceipt transitions a pending receipt to paid, recording the
// payment method and timestamp.
func (s *receiptService) PayReceipt(ctx context.Context, receiptID uuid.UUID, paymentMethod string) (*models.Receipt, error) {
	if paymentMethod == "" {
		return nil, &models.ValidationError{Field: "payment_method", Message: "payment method is required"}
	}

	var receipt *models.Receipt
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		receipts := repositories.NewReceiptRepo(tx)
		var err error
		receipt, err = receipts.GetByIDForUpdate(ctx, receiptID)
		if err != nil {
			return fmt.Errorf("failed to get receipt: %w", err)
		}
		if receipt == nil {
			return models.NewNotFoundError("receipt", receiptID)
		}
		if err := receipt.Pay(paymentMethod, time.Now()); err != nil {
			return err
		}
		return receipts.Update(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// CancelReceipt cancels a receipt and restores the reserved stock of
// every line item in the same transaction as the state change.
func (s *receiptService) CancelReceipt(ctx context.Context, receiptID uuid.UUID) (*models.Receipt, error) {
	var receipt *models.Receipt
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		receipts := repositories.NewReceiptRepo(tx)
		ledger := NewStockLedger(repositories.NewProductRepo(tx))

		var err error
		receipt, err = receipts.GetByIDForUpdate(ctx, receiptID)
		if err != nil {
			return fmt.Errorf("failed to get receipt: %w", err)
		}
		if receipt == nil {
			return models.NewNotFoundError("receipt", receiptID)
		}
		if err := receipt.Cancel(); err != nil {
			return err
		}
		for _, item := range receipt.Items {
			if err := ledger.Increment(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return receipts.Update(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, receipt.Items)
	return receipt, nil
}

// RemoveReceiptItem detaches one line item from a pending receipt,
// restoring its reserved stock and recomputing the totals.
func (s *receiptService) RemoveReceiptItem(ctx context.Context, receiptID, itemID uuid.UUID) (*models.Receipt, error) {
	var receipt *models.Receipt
	var removed *models.ReceiptItem
	err := runInTx(ctx, s.db, func(tx pgx.Tx) error {
		receipts := repositories.NewReceiptRepo(tx)
		ledger := NewStockLedger(repositories.NewProductRepo(tx))

		var err error
		receipt, err = receipts.GetByIDForUpdate(ctx, receiptID)
		if err != nil {
			return fmt.Errorf("failed to get receipt: %w", err)
		}
		if receipt == nil {
			return models.NewNotFoundError("receipt", receiptID)
		}
		removed, err = receipt.RemoveItem(itemID)
		if err != nil {
			return err
		}
		if err := ledger.Increment(ctx, removed.ProductID, removed.Quantity); err != nil {
			return err
		}
		if err := receipts.DeleteItem(ctx, itemID); err != nil {
			return fmt.Errorf("failed to delete receipt item: %w", err)
		}
		return receipts.Update(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, []*models.ReceiptItem{removed})
	return receipt, nil
}

// DeleteReceipt removes a receipt and its line items. Administrative
// purge; no stock is restored.
func (s *receiptService) DeleteReceipt(ctx context.Context, receiptID uuid.UUID) error {
	repo := repositories.NewReceiptRepo(s.db)
	receipt, err := repo.GetByID(ctx, receiptID)
	if err != nil {
		return fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt == nil {
		return models.NewNotFoundError("receipt", receiptID)
	}
	return repo.Delete(ctx, receiptID)
}

// ExpireStalePending cancels pending receipts whose creation time is
// older than ttl. Each receipt cancels in its own transaction so one
// failure does not hold back the rest.
func (s *receiptService) ExpireStalePending(ctx context.Context, ttl time.Duration, limit int) (int, error) {
	cutoff := time.Now().Add(-ttl)
	stale, err := repositories.NewReceiptRepo(s.db).ListStalePending(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale receipts: %w", err)
	}

	cancelled := 0
	for _, receipt := range stale {
		if _, err := s.CancelReceipt(ctx, receipt.ID); err != nil {
			log.Printf("Failed to expire receipt %s: %v", receipt.Number, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *receiptService) invalidateProducts(ctx context.Context, items []*models.ReceiptItem) {
	if s.cache == nil {
		return
	}
	for _, item := range items {
		if err := s.cache.DeleteProduct(ctx, item.ProductID); err != nil {
			log.Printf("Failed to invalidate product cache for %s: %v", item.ProductID, err)
		}
	}
}
