package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonekids/internal/models"
)

func productRow(id uuid.UUID, name string, unitPrice int64, stock int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "name", "description", "category", "unit_price", "stock", "status", "created_at", "updated_at"}).
		AddRow(id, name, nil, nil, unitPrice, stock, models.ProductStatusActive, now, now)
}

func TestProductRepoGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT id, name, description, category, unit_price, stock, status, created_at, updated_at FROM products WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(productRow(id, "Polera Dino", 2500, 10))

	product, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Polera Dino", product.Name)
	assert.Equal(t, int64(2500), product.UnitPrice)
	assert.Equal(t, 10, product.Stock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "category", "unit_price", "stock", "status", "created_at", "updated_at"}))

	product, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, product)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoDecrementStockGuard(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	id := uuid.New()

	// Guard holds: one row updated
	mock.ExpectExec(`SET stock = stock - \$2`).
		WithArgs(id, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.DecrementStock(context.Background(), id, 3)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Guard fails: no row matches id AND stock >= quantity
	mock.ExpectExec(`SET stock = stock - \$2`).
		WithArgs(id, 100).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err = repo.DecrementStock(context.Background(), id, 100)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoIncrementStock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	id := uuid.New()

	mock.ExpectExec(`SET stock = stock \+ \$2`).
		WithArgs(id, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.IncrementStock(context.Background(), id, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoSearchBuildsConditions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductRepo(mock)
	category := "poleras"
	minPrice := int64(1000)

	mock.ExpectQuery(`AND \(name ILIKE \$1 OR COALESCE\(description, ''\) ILIKE \$1\) AND category = \$2 AND unit_price >= \$3 ORDER BY unit_price ASC LIMIT \$4`).
		WithArgs("%dino%", category, minPrice, 25).
		WillReturnRows(productRow(uuid.New(), "Polera Dino", 2500, 10))

	products, err := repo.Search(context.Background(), &models.ProductSearchFilter{
		Query:     "dino",
		Category:  &category,
		MinPrice:  &minPrice,
		SortBy:    "unit_price",
		SortOrder: "asc",
		Limit:     25,
	})
	assert.NoError(t, err)
	assert.Len(t, products, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}
