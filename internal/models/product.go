package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"

	// Catalog rule: every published product carries between two and
	// three images.
	MinProductImages = 2
	MaxProductImages = 3
)

// ProductSearchFilter holds search and filter criteria for catalog queries
type ProductSearchFilter struct {
	Query    string  `json:"query,omitempty"`     // Substring search across name and description
	Category *string `json:"category,omitempty"`  // Category filter
	Status   *string `json:"status,omitempty"`    // Status filter (active, inactive)
	MinPrice *int64  `json:"min_price,omitempty"` // Minimum unit price in cents
	MaxPrice *int64  `json:"max_price,omitempty"` // Maximum unit price in cents
	SortBy   string  `json:"sort_by,omitempty"`   // Sort field: name, created_at, unit_price, stock
	SortOrder string `json:"sort_order,omitempty"` // Sort order: asc, desc
	Limit    int     `json:"limit,omitempty"`     // Page size (default: 50)
	Offset   int     `json:"offset,omitempty"`    // Page offset
}

type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Category    *string    `json:"category" db:"category"`
	// UnitPrice is in the currency's minor unit (cents). Never a float.
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	Stock     int       `json:"stock" db:"stock"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Images are loaded alongside the product by the catalog service.
	Images []*ProductImage `json:"images,omitempty" db:"-"`
}
