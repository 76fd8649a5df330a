package services

import (
	"context"
	"fmt"

	"zonekids/internal/models"
	"zonekids/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LineRequest is one (product, quantity) pair of a cart.
type LineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// runInTx runs fn inside a transaction, committing on success and
// rolling back on any error. Every settlement operation goes through
// here so stock movement and row writes are all-or-nothing.
func runInTx(ctx context.Context, db repositories.DBTX, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// assembleLine resolves and row-locks the product for one requested
// line, verifies availability through the ledger, and hands back the
// product so the caller can snapshot its current unit price. It checks
// only; stock is decremented later, once every line of the cart has
// assembled.
func assembleLine(ctx context.Context, products repositories.ProductRepository, ledger *StockLedger, line LineRequest) (*models.Product, error) {
	if line.Quantity < 1 {
		return nil, &models.ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}

	product, err := products.GetByIDForUpdate(ctx, line.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil {
		return nil, models.NewNotFoundError("product", line.ProductID)
	}

	available, err := ledger.CheckAvailable(ctx, product.ID, line.Quantity)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, &models.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   line.Quantity,
		}
	}
	return product, nil
}

// resolveBuyer validates that the buyer exists and may purchase.
func resolveBuyer(ctx context.Context, users repositories.UserRepository, userID uuid.UUID) (*models.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buyer: %w", err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("user", userID)
	}
	if !user.IsActive() {
		return nil, &models.ValidationError{Field: "user_id", Message: "user account is inactive"}
	}
	return user, nil
}
