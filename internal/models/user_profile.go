package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds the contact details attached one-to-one to a user
// account. Names live on User; everything here is optional, but a RUT,
// once set, must be unique across profiles.
type UserProfile struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Phone      *string   `json:"phone" db:"phone"`
	Address    *string   `json:"address" db:"address"`
	City       *string   `json:"city" db:"city"`
	Country    *string   `json:"country" db:"country"`
	PostalCode *string   `json:"postal_code" db:"postal_code"`
	RUT        *string   `json:"rut" db:"rut"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
