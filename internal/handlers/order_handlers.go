package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"zonekids/internal/common"
	"zonekids/internal/models"
	"zonekids/internal/services"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

func requireIdentity(c echo.Context) (uuid.UUID, string, bool) {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, "", false
	}
	role, _ := common.GetUserRoleFromContext(ctx)
	return userID, role, true
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, _, ok := requireIdentity(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Items []services.LineRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.CreateOrder(ctx, userID, req.Items)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   order,
	})
}

// ListOrders handles GET /orders. Customers see their own orders; admins
// may filter by any user via the user_id query parameter.
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, role, ok := requireIdentity(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	filterUser := &userID
	if role == models.RoleAdmin {
		filterUser = nil
		if raw := c.QueryParam("user_id"); raw != "" {
			id, err := common.ValidateUUID(raw, "user_id")
			if err != nil {
				return common.SendClientError(c, err.Error())
			}
			filterUser = &id
		}
	}

	var filterStatus *string
	if raw := c.QueryParam("status"); raw != "" {
		if err := common.ValidateOrderStatus(raw); err != nil {
			return common.SendValidationError(c, "status", err.Error())
		}
		filterStatus = &raw
	}

	orders, err := h.orderService.ListOrders(ctx, filterUser, filterStatus, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list orders")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *OrderHandlers) getAuthorizedOrder(c echo.Context) (*models.Order, error) {
	ctx := c.Request().Context()

	userID, role, ok := requireIdentity(c)
	if !ok {
		return nil, common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return nil, common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetOrderByID(ctx, id)
	if err != nil {
		return nil, common.SendDomainError(c, err)
	}

	if role != models.RoleAdmin && order.UserID != userID {
		return nil, common.SendForbiddenError(c)
	}
	return order, nil
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	order, err := h.getAuthorizedOrder(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// CompleteOrder handles POST /orders/:id/complete
func (h *OrderHandlers) CompleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.getAuthorizedOrder(c)
	if err != nil {
		return err
	}

	completed, err := h.orderService.CompleteOrder(ctx, order.ID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order completed",
		"order":   completed,
	})
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandlers) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.getAuthorizedOrder(c)
	if err != nil {
		return err
	}

	cancelled, err := h.orderService.CancelOrder(ctx, order.ID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order cancelled",
		"order":   cancelled,
	})
}

// RemoveOrderItem handles DELETE /orders/:id/items/:itemID
func (h *OrderHandlers) RemoveOrderItem(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.getAuthorizedOrder(c)
	if err != nil {
		return err
	}

	itemID, err := common.ValidateUUID(c.Param("itemID"), "itemID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	updated, err := h.orderService.RemoveOrderItem(ctx, order.ID, itemID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Item removed",
		"order":   updated,
	})
}

// DeleteOrder handles DELETE /orders/:id (admin only via route guard)
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.orderService.DeleteOrder(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}
