package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Business-rule errors surfaced by the services. Handlers translate them
// to HTTP statuses with errors.As; anything else is treated as an
// internal failure.

// NotFoundError reports a missing entity together with the identifier
// that was looked up.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// ValidationError reports invalid input on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InsufficientStockError is returned when a requested quantity exceeds
// the product's available stock.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// InvalidStateError reports an illegal lifecycle transition, e.g. paying
// a receipt that is not pending.
type InvalidStateError struct {
	Entity    string
	Current   string
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s in state %q", e.Operation, e.Entity, e.Current)
}

// ConflictError reports a unique-key collision, e.g. a duplicate email
// or receipt number.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}
