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

// ProductHandlers handles HTTP requests for the product catalog
type ProductHandlers struct {
	productService services.ProductServiceInterface
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductServiceInterface) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	products, err := h.productService.ListProducts(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list products")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// SearchProducts handles GET /products/search
func (h *ProductHandlers) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	filter := &models.ProductSearchFilter{
		Query:     common.SanitizeSearchQuery(c.QueryParam("q")),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}

	if category := c.QueryParam("category"); category != "" {
		filter.Category = &category
	}
	if status := c.QueryParam("status"); status != "" {
		if status != models.ProductStatusActive && status != models.ProductStatusInactive {
			return common.SendValidationError(c, "status", "status must be active or inactive")
		}
		filter.Status = &status
	}

	if raw := c.QueryParam("min_price"); raw != "" {
		minPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || minPrice < 0 {
			return common.SendValidationError(c, "min_price", "min_price must be a non-negative amount in cents")
		}
		filter.MinPrice = &minPrice
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || maxPrice < 0 {
			return common.SendValidationError(c, "max_price", "max_price must be a non-negative amount in cents")
		}
		filter.MaxPrice = &maxPrice
	}

	products, err := h.productService.SearchProducts(ctx, filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name        string   `json:"name"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		UnitPrice   int64    `json:"unit_price"`
		Stock       int      `json:"stock"`
		ImageURLs   []string `json:"image_urls"`
	}

	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateOptionalString(req.Description, "description", 2000); err != nil {
		return common.SendValidationError(c, "description", err.Error())
	}
	if err := common.ValidateOptionalString(req.Category, "category", 100); err != nil {
		return common.SendValidationError(c, "category", err.Error())
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		UnitPrice:   req.UnitPrice,
		Stock:       req.Stock,
		Status:      models.ProductStatusActive,
	}

	created, err := h.productService.CreateProduct(ctx, product, req.ImageURLs)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Product created successfully",
		"product": created,
	})
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		UnitPrice   int64   `json:"unit_price"`
		Stock       int     `json:"stock"`
		Status      string  `json:"status"`
	}

	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.Status != "" && req.Status != models.ProductStatusActive && req.Status != models.ProductStatusInactive {
		return common.SendValidationError(c, "status", "status must be active or inactive")
	}
	if req.Status == "" {
		req.Status = models.ProductStatusActive
	}

	product := &models.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		UnitPrice:   req.UnitPrice,
		Stock:       req.Stock,
		Status:      req.Status,
	}

	updated, err := h.productService.UpdateProduct(ctx, product)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": updated,
	})
}

// SetProductImages handles PUT /products/:id/images
func (h *ProductHandlers) SetProductImages(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		ImageURLs []string `json:"image_urls"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.productService.SetProductImages(ctx, id, req.ImageURLs); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product images updated"})
}

// UploadProductImage handles POST /products/:id/images/upload
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	objectName, err := h.productService.UploadProductImage(ctx, id, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Image uploaded successfully",
		"object":  objectName,
	})
}

// RestockProduct handles POST /products/:id/restock
func (h *ProductHandlers) RestockProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.productService.RestockProduct(ctx, id, req.Quantity); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product restocked"})
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
