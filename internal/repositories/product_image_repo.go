package repositories

import (
	"context"

	"zonekids/internal/models"

	"github.com/google/uuid"
)

type ProductImageRepository interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)
	// ReplaceForProduct swaps the full image set of a product. Callers
	// validate the image-count bounds before reaching the repository.
	ReplaceForProduct(ctx context.Context, productID uuid.UUID, images []*models.ProductImage) error
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
}

type productImageRepo struct {
	db DBTX
}

func NewProductImageRepo(db DBTX) ProductImageRepository {
	return &productImageRepo{db: db}
}

func (r *productImageRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	query := `
		SELECT id, product_id, image_url, position, alt_text, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		image := &models.ProductImage{}
		if err := rows.Scan(&image.ID, &image.ProductID, &image.ImageURL, &image.Position, &image.AltText, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *productImageRepo) ReplaceForProduct(ctx context.Context, productID uuid.UUID, images []*models.ProductImage) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID); err != nil {
		return err
	}
	query := `
		INSERT INTO product_images (id, product_id, image_url, position, alt_text, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	for i, image := range images {
		if image.ID == uuid.Nil {
			image.ID = uuid.New()
		}
		image.ProductID = productID
		image.Position = i
		if _, err := r.db.Exec(ctx, query, image.ID, image.ProductID, image.ImageURL, image.Position, image.AltText); err != nil {
			return err
		}
	}
	return nil
}

func (r *productImageRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID)
	return err
}
