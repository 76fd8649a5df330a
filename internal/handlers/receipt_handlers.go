package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"zonekids/internal/common"
	"zonekids/internal/models"
	"zonekids/internal/services"
)

// ReceiptHandlers handles HTTP requests for receipts
type ReceiptHandlers struct {
	receiptService services.ReceiptServiceInterface
}

// NewReceiptHandlers creates a new receipt handlers instance
func NewReceiptHandlers(receiptService services.ReceiptServiceInterface) *ReceiptHandlers {
	return &ReceiptHandlers{receiptService: receiptService}
}

// CreateReceipt handles POST /receipts
func (h *ReceiptHandlers) CreateReceipt(c echo.Context) error {
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

	receipt, err := h.receiptService.CreateReceipt(ctx, userID, req.Items)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Receipt created successfully",
		"receipt": receipt,
	})
}

// ListReceipts handles GET /receipts. Customers see their own receipts;
// admins may filter by any user via the user_id query parameter.
func (h *ReceiptHandlers) ListReceipts(c echo.Context) error {
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
		if err := common.ValidateReceiptStatus(raw); err != nil {
			return common.SendValidationError(c, "status", err.Error())
		}
		filterStatus = &raw
	}

	receipts, err := h.receiptService.ListReceipts(ctx, filterUser, filterStatus, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list receipts")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *ReceiptHandlers) getAuthorizedReceipt(c echo.Context) (*models.Receipt, error) {
	ctx := c.Request().Context()

	userID, role, ok := requireIdentity(c)
	if !ok {
		return nil, common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return nil, common.SendClientError(c, err.Error())
	}

	receipt, err := h.receiptService.GetReceiptByID(ctx, id)
	if err != nil {
		return nil, common.SendDomainError(c, err)
	}

	if role != models.RoleAdmin && receipt.UserID != userID {
		return nil, common.SendForbiddenError(c)
	}
	return receipt, nil
}

// GetReceipt handles GET /receipts/:id
func (h *ReceiptHandlers) GetReceipt(c echo.Context) error {
	receipt, err := h.getAuthorizedReceipt(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, receipt)
}

// GetReceiptByNumber handles GET /receipts/number/:number
func (h *ReceiptHandlers) GetReceiptByNumber(c echo.Context) error {
	ctx := c.Request().Context()

	userID, role, ok := requireIdentity(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		return common.SendValidationError(c, "number", "receipt number is required")
	}

	receipt, err := h.receiptService.GetReceiptByNumber(ctx, number)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if role != models.RoleAdmin && receipt.UserID != userID {
		return common.SendForbiddenError(c)
	}
	return c.JSON(http.StatusOK, receipt)
}

// PayReceipt handles POST /receipts/:id/pay
func (h *ReceiptHandlers) PayReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	receipt, err := h.getAuthorizedReceipt(c)
	if err != nil {
		return err
	}

	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.PaymentMethod, "payment_method"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	paid, err := h.receiptService.PayReceipt(ctx, receipt.ID, req.PaymentMethod)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Receipt paid",
		"receipt": paid,
	})
}

// CancelReceipt handles POST /receipts/:id/cancel
func (h *ReceiptHandlers) CancelReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	receipt, err := h.getAuthorizedReceipt(c)
	if err != nil {
		return err
	}

	cancelled, err := h.receiptService.CancelReceipt(ctx, receipt.ID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Receipt cancelled",
		"receipt": cancelled,
	})
}

// RemoveReceiptItem handles DELETE /receipts/:id/items/:itemID
func (h *ReceiptHandlers) RemoveReceiptItem(c echo.Context) error {
	ctx := c.Request().Context()

	receipt, err := h.getAuthorizedReceipt(c)
	if err != nil {
		return err
	}

	itemID, err := common.ValidateUUID(c.Param("itemID"), "itemID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	updated, err := h.receiptService.RemoveReceiptItem(ctx, receipt.ID, itemID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Item removed",
		"receipt": updated,
	})
}

// DeleteReceipt handles DELETE /receipts/:id (admin only via route guard)
func (h *ReceiptHandlers) DeleteReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.receiptService.DeleteReceipt(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Receipt deleted successfully"})
}
