package repositories

import (
	"context"
	"errors"

	"zonekids/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	GetByRUT(ctx context.Context, rut string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type userProfileRepo struct {
	db DBTX
}

func NewUserProfileRepo(db DBTX) UserProfileRepository {
	return &userProfileRepo{db: db}
}

const userProfileColumns = `id, user_id, phone, address, city, country, postal_code, rut, created_at, updated_at`

func (r *userProfileRepo) scanOne(row pgx.Row) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	err := row.Scan(&profile.ID, &profile.UserID, &profile.Phone, &profile.Address, &profile.City, &profile.Country, &profile.PostalCode, &profile.RUT, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *userProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	query := `
		SELECT ` + userProfileColumns + `
		FROM user_profiles
		WHERE user_id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

func (r *userProfileRepo) GetByRUT(ctx context.Context, rut string) (*models.UserProfile, error) {
	query := `
		SELECT ` + userProfileColumns + `
		FROM user_profiles
		WHERE rut = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, rut))
}

// Upsert writes the profile for its user, creating the row on first
// save and replacing the contact fields on every later one.
func (r *userProfileRepo) Upsert(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (id, user_id, phone, address, city, country, postal_code, rut, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET phone = EXCLUDED.phone, address = EXCLUDED.address, city = EXCLUDED.city,
		    country = EXCLUDED.country, postal_code = EXCLUDED.postal_code, rut = EXCLUDED.rut,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.UserID, profile.Phone, profile.Address, profile.City, profile.Country, profile.PostalCode, profile.RUT)
	return err
}

func (r *userProfileRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM user_profiles WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
