package services

import (
	"context"
	"fmt"

	"zonekids/internal/models"
	"zonekids/internal/repositories"

	"github.com/google/uuid"
)

// StockLedger is the abstraction over a product's available-quantity
// counter. It is constructed over a transaction-bound product
// repository, so every mutation it performs commits or rolls back with
// the surrounding settlement.
type StockLedger struct {
	products repositories.ProductRepository
}

func NewStockLedger(products repositories.ProductRepository) *StockLedger {
	return &StockLedger{products: products}
}

// CheckAvailable reports whether the product has at least quantity
// units in stock.
func (l *StockLedger) CheckAvailable(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	product, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check stock: %w", err)
	}
	if product == nil {
		return false, models.NewNotFoundError("product", productID)
	}
	return product.Stock >= quantity, nil
}

// Decrement subtracts quantity from the product's stock. It returns
// InsufficientStockError when the guard fails, and never drives stock
// negative even under concurrent settlement.
func (l *StockLedger) Decrement(ctx context.Context, productID uuid.UUID, quantity int) error {
	ok, err := l.products.DecrementStock(ctx, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if ok {
		return nil
	}

	product, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to read product after stock guard: %w", err)
	}
	if product == nil {
		return models.NewNotFoundError("product", productID)
	}
	return &models.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   product.Stock,
		Requested:   quantity,
	}
}

// Increment adds quantity back to the product's stock. Used on
// cancellation; callers guarantee it runs exactly once per cancelled
// line item by serializing cancel through the aggregate's state machine.
func (l *StockLedger) Increment(ctx context.Context, productID uuid.UUID, quantity int) error {
	if err := l.products.IncrementStock(ctx, productID, quantity); err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	return nil
}
