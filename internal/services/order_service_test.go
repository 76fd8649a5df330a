package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zonekids/internal/models"
)

func testProductRows(id uuid.UUID, name string, unitPrice int64, stock int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "name", "description", "category", "unit_price", "stock", "status", "created_at", "updated_at"}).
		AddRow(id, name, nil, nil, unitPrice, stock, models.ProductStatusActive, now, now)
}

func testOrderRows(id, userID uuid.UUID, subtotal, tax, total int64, status string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "user_id", "subtotal", "tax", "total", "status", "created_at", "updated_at"}).
		AddRow(id, userID, subtotal, tax, total, status, now, now)
}

func testOrderItemRows(orderID, productID uuid.UUID, quantity int, unitPrice int64) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price", "created_at"})
	if productID != uuid.Nil {
		rows.AddRow(uuid.New(), orderID, productID, quantity, unitPrice, time.Now())
	}
	return rows
}

func expectActiveBuyer(users *MockUserRepository, userID uuid.UUID) {
	users.On("GetByID", mock.Anything, userID).Return(&models.User{
		ID:     userID,
		Email:  "buyer@example.com",
		Role:   models.RoleUser,
		Status: models.UserStatusActive,
	}, nil)
}

func TestCreateOrderSettlesAtomically(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	userID := uuid.New()
	productID := uuid.New()
	expectActiveBuyer(users, userID)

	db.ExpectBegin()
	// Assembly: lock the row, then check availability
	db.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(productID).
		WillReturnRows(testProductRows(productID, "Polera Dino", 2500, 10))
	db.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnRows(testProductRows(productID, "Polera Dino", 2500, 10))
	// Settlement: decrement stock, then persist
	db.ExpectExec(`SET stock = stock - \$2`).
		WithArgs(productID, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	db.ExpectExec(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), userID, int64(7500), int64(1425), int64(8925), models.OrderStatusPending).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	db.ExpectExec(`INSERT INTO order_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), productID, 3, int64(2500)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	db.ExpectCommit()

	order, err := svc.CreateOrder(context.Background(), userID, []LineRequest{{ProductID: productID, Quantity: 3}})
	assert.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(7500), order.Subtotal)
	assert.Equal(t, int64(1425), order.Tax)
	assert.Equal(t, int64(8925), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(2500), order.Items[0].UnitPrice)

	assert.NoError(t, db.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnInsufficientStock(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	userID := uuid.New()
	productID := uuid.New()
	expectActiveBuyer(users, userID)

	db.ExpectBegin()
	db.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(productID).
		WillReturnRows(testProductRows(productID, "Polera Dino", 2500, 2))
	db.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnRows(testProductRows(productID, "Polera Dino", 2500, 2))
	db.ExpectRollback()

	_, err = svc.CreateOrder(context.Background(), userID, []LineRequest{{ProductID: productID, Quantity: 3}})
	var insufficientStock *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficientStock)
	assert.Equal(t, 2, insufficientStock.Available)
	assert.Equal(t, 3, insufficientStock.Requested)

	assert.NoError(t, db.ExpectationsWereMet())
}

func TestCreateOrderMultiLineShortageLeavesAllStockUntouched(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()
	expectActiveBuyer(users, userID)

	// Every line assembles before any stock moves, so a shortage on the
	// second line must roll back with no decrement for the first or third.
	db.ExpectBegin()
	db.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(first).
		WillReturnRows(testProductRows(first, "Polera Dino", 2500, 10))
	db.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(first).
		WillReturnRows(testProductRows(first, "Polera Dino", 2500, 10))
	db.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(second).
		WillReturnRows(testProductRows(second, "Gorro Estrella", 1500, 2))
	db.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(second).
		WillReturnRows(testProductRows(second, "Gorro Estrella", 1500, 2))
	db.ExpectRollback()

	_, err = svc.CreateOrder(context.Background(), userID, []LineRequest{
		{ProductID: first, Quantity: 1},
		{ProductID: second, Quantity: 5},
		{ProductID: third, Quantity: 2},
	})
	var insufficientStock *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficientStock)
	assert.Equal(t, second, insufficientStock.ProductID)
	assert.Equal(t, 2, insufficientStock.Available)
	assert.Equal(t, 5, insufficientStock.Requested)

	// No decrement and no order/item insert were expected, so any such
	// statement reaching the pool fails the ordered expectation set.
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	userID := uuid.New()
	expectActiveBuyer(users, userID)

	_, err = svc.CreateOrder(context.Background(), userID, nil)
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "items", validation.Field)

	assert.NoError(t, db.ExpectationsWereMet())
}

func TestCreateOrderRejectsInactiveBuyer(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	userID := uuid.New()
	users.On("GetByID", mock.Anything, userID).Return(&models.User{
		ID:     userID,
		Status: models.UserStatusInactive,
	}, nil)

	_, err = svc.CreateOrder(context.Background(), userID, []LineRequest{{ProductID: uuid.New(), Quantity: 1}})
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "user_id", validation.Field)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	orderID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()

	db.ExpectBegin()
	db.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(testOrderRows(orderID, userID, 7500, 1425, 8925, models.OrderStatusPending))
	db.ExpectQuery(`FROM order_items`).
		WithArgs(orderID).
		WillReturnRows(testOrderItemRows(orderID, productID, 3, 2500))
	db.ExpectExec(`SET stock = stock \+ \$2`).
		WithArgs(productID, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	db.ExpectExec(`UPDATE orders`).
		WithArgs(int64(7500), int64(1425), int64(8925), models.OrderStatusCancelled, orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	db.ExpectCommit()

	order, err := svc.CancelOrder(context.Background(), orderID)
	assert.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	assert.NoError(t, db.ExpectationsWereMet())
}

func TestCancelOrderTwiceRollsBack(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	orderID := uuid.New()

	db.ExpectBegin()
	db.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(testOrderRows(orderID, uuid.New(), 7500, 1425, 8925, models.OrderStatusCancelled))
	db.ExpectQuery(`FROM order_items`).
		WithArgs(orderID).
		WillReturnRows(testOrderItemRows(orderID, uuid.Nil, 0, 0))
	db.ExpectRollback()

	_, err = svc.CancelOrder(context.Background(), orderID)
	var stateErr *models.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)

	assert.NoError(t, db.ExpectationsWereMet())
}

func TestCompleteOrderOnlyFromPending(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	orderID := uuid.New()

	db.ExpectBegin()
	db.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(testOrderRows(orderID, uuid.New(), 2500, 475, 2975, models.OrderStatusPending))
	db.ExpectQuery(`FROM order_items`).
		WithArgs(orderID).
		WillReturnRows(testOrderItemRows(orderID, uuid.Nil, 0, 0))
	db.ExpectExec(`UPDATE orders`).
		WithArgs(int64(2500), int64(475), int64(2975), models.OrderStatusCompleted, orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	db.ExpectCommit()

	order, err := svc.CompleteOrder(context.Background(), orderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	assert.NoError(t, db.ExpectationsWereMet())
}

func TestCompleteOrderNotFound(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()

	users := new(MockUserRepository)
	svc := NewOrderService(db, users, nil)

	orderID := uuid.New()

	db.ExpectBegin()
	db.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	db.ExpectRollback()

	_, err = svc.CompleteOrder(context.Background(), orderID)
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	assert.NoError(t, db.ExpectationsWereMet())
}
