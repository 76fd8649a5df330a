package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"zonekids/internal/caching"
	"zonekids/internal/models"
	"zonekids/internal/repositories"
)

const productCacheTTL = 10 * time.Minute

// ProductServiceInterface manages the product catalog
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, product *models.Product, imageURLs []string) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)
	SearchProducts(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	SetProductImages(ctx context.Context, productID uuid.UUID, imageURLs []string) error
	UploadProductImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64) (string, error)
	RestockProduct(ctx context.Context, productID uuid.UUID, quantity int) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	products repositories.ProductRepository
	images   repositories.ProductImageRepository
	storage  ImageStorageService
	cache    caching.CacheService
}

func NewProductService(products repositories.ProductRepository, images repositories.ProductImageRepository, storage ImageStorageService, cache caching.CacheService) ProductServiceInterface {
	return &productService{
		products: products,
		images:   images,
		storage:  storage,
		cache:    cache,
	}
}

func validateProduct(product *models.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return &models.ValidationError{Field: "name", Message: "product name is required"}
	}
	if product.UnitPrice <= 0 {
		return &models.ValidationError{Field: "unit_price", Message: "unit price must be a positive amount in cents"}
	}
	if product.Stock < 0 {
		return &models.ValidationError{Field: "stock", Message: "stock cannot be negative"}
	}
	return nil
}

func validateImageCount(count int) error {
	if count < models.MinProductImages || count > models.MaxProductImages {
		return &models.ValidationError{
			Field:   "images",
			Message: fmt.Sprintf("a product requires between %d and %d images", models.MinProductImages, models.MaxProductImages),
		}
	}
	return nil
}

func buildImageSet(productID uuid.UUID, imageURLs []string) []*models.ProductImage {
	images := make([]*models.ProductImage, 0, len(imageURLs))
	for i, url := range imageURLs {
		images = append(images, &models.ProductImage{
			ID:        uuid.New(),
			ProductID: productID,
			ImageURL:  url,
			Position:  i,
		})
	}
	return images
}

func (s *productService) CreateProduct(ctx context.Context, product *models.Product, imageURLs []string) (*models.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := validateImageCount(len(imageURLs)); err != nil {
		return nil, err
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	images := buildImageSet(product.ID, imageURLs)
	if err := s.images.ReplaceForProduct(ctx, product.ID, images); err != nil {
		return nil, fmt.Errorf("failed to store product images: %w", err)
	}
	product.Images = images

	return product, nil
}

// GetProductByID reads through the cache; misses fall back to the database
// and repopulate the cache. Images are loaded on every read.
func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProduct(ctx, id)
		if err != nil {
			log.Printf("WARN: product cache read failed for %s: %v", id, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, models.NewNotFoundError("product", id)
	}

	images, err := s.images.ListByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product images: %w", err)
	}
	product.Images = images

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, product, productCacheTTL); err != nil {
			log.Printf("WARN: product cache write failed for %s: %v", id, err)
		}
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	return s.products.List(ctx, limit, offset)
}

func (s *productService) SearchProducts(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter == nil {
		filter = &models.ProductSearchFilter{}
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, &models.ValidationError{Field: "min_price", Message: "min_price cannot exceed max_price"}
	}
	return s.products.Search(ctx, filter)
}

func (s *productService) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	existing, err := s.products.GetByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return nil, models.NewNotFoundError("product", product.ID)
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidate(ctx, product.ID)
	return product, nil
}

func (s *productService) SetProductImages(ctx context.Context, productID uuid.UUID, imageURLs []string) error {
	if err := validateImageCount(len(imageURLs)); err != nil {
		return err
	}

	existing, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return models.NewNotFoundError("product", productID)
	}

	if err := s.images.ReplaceForProduct(ctx, productID, buildImageSet(productID, imageURLs)); err != nil {
		return fmt.Errorf("failed to replace product images: %w", err)
	}

	s.invalidate(ctx, productID)
	return nil
}

func (s *productService) UploadProductImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("image storage is not configured")
	}

	existing, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return "", models.NewNotFoundError("product", productID)
	}

	return s.storage.UploadProductImage(ctx, productID, filename, reader, size)
}

func (s *productService) RestockProduct(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return &models.ValidationError{Field: "quantity", Message: "restock quantity must be positive"}
	}

	existing, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return models.NewNotFoundError("product", productID)
	}

	if err := s.products.IncrementStock(ctx, productID, quantity); err != nil {
		return fmt.Errorf("failed to restock product: %w", err)
	}

	s.invalidate(ctx, productID)
	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return models.NewNotFoundError("product", id)
	}

	if err := s.images.DeleteByProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product images: %w", err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *productService) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteProduct(ctx, productID); err != nil {
		log.Printf("WARN: product cache invalidation failed for %s: %v", productID, err)
	}
}
