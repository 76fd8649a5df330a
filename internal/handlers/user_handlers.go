package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"zonekids/internal/common"
	"zonekids/internal/models"
	"zonekids/internal/services"
)

// UserHandlers handles HTTP requests for user administration
type UserHandlers struct {
	userService services.UserServiceInterface
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userService services.UserServiceInterface) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListUsers handles GET /users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	users, err := h.userService.ListUsers(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

// GetUser handles GET /users/:id
func (h *UserHandlers) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	user, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /me
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.userService.UpdateProfile(ctx, userID, req.FirstName, req.LastName)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// GetMyProfile handles GET /me/profile
func (h *UserHandlers) GetMyProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.userService.GetContactProfile(ctx, userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, profile)
}

// SaveMyProfile handles PUT /me/profile
func (h *UserHandlers) SaveMyProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Phone      *string `json:"phone"`
		Address    *string `json:"address"`
		City       *string `json:"city"`
		Country    *string `json:"country"`
		PostalCode *string `json:"postal_code"`
		RUT        *string `json:"rut"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	for field, value := range map[string]*string{
		"phone": req.Phone, "address": req.Address, "city": req.City,
		"country": req.Country, "postal_code": req.PostalCode, "rut": req.RUT,
	} {
		if err := common.ValidateOptionalString(value, field, 120); err != nil {
			return common.SendClientError(c, err.Error())
		}
	}

	profile, err := h.userService.SaveContactProfile(ctx, userID, &models.UserProfile{
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		RUT:        req.RUT,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, profile)
}

// SetUserStatus handles PUT /users/:id/status
func (h *UserHandlers) SetUserStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.userService.SetUserStatus(ctx, id, req.Status); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "User status updated"})
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
