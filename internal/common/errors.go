package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"zonekids/internal/models"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendForbiddenError sends a forbidden error response
func SendForbiddenError(c echo.Context) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse("FORBIDDEN", "Insufficient permissions", nil))
}

// SendDomainError maps domain errors onto HTTP responses. Unknown errors
// become a generic 500 so internal details never leak to the client.
func SendDomainError(c echo.Context, err error) error {
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		return SendNotFoundError(c, notFound.Resource)
	}

	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return SendValidationError(c, validation.Field, validation.Message)
	}

	var insufficientStock *models.InsufficientStockError
	if errors.As(err, &insufficientStock) {
		details := map[string]string{
			"product_id": insufficientStock.ProductID.String(),
			"available":  strconv.Itoa(insufficientStock.Available),
			"requested":  strconv.Itoa(insufficientStock.Requested),
		}
		return c.JSON(http.StatusConflict, CreateErrorResponse("INSUFFICIENT_STOCK", insufficientStock.Error(), details))
	}

	var invalidState *models.InvalidStateError
	if errors.As(err, &invalidState) {
		return c.JSON(http.StatusConflict, CreateErrorResponse("INVALID_STATE", invalidState.Error(), nil))
	}

	var conflict *models.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", conflict.Error(), nil))
	}

	return SendServerError(c, "operation could not be completed")
}
