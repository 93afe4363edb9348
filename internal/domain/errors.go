package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrRestaurantInactive = errors.New("restaurant is not active")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrForbidden          = errors.New("not enough permissions")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field problem found in one request.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnavailableItemsError names every requested menu item that is missing,
// unavailable or owned by another restaurant.
type UnavailableItemsError struct {
	RestaurantID uuid.UUID
	ItemIDs      []uuid.UUID
}

func (e *UnavailableItemsError) Error() string {
	ids := make([]string, len(e.ItemIDs))
	for i, id := range e.ItemIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("one or more menu items are unavailable or not found: %s", strings.Join(ids, ", "))
}

func (e *UnavailableItemsError) Is(target error) bool {
	return target == ErrValidation
}

// SideEffectError is returned after an order was committed but one or more
// post-commit actions failed. The order is durable; Order is never nil.
type SideEffectError struct {
	Order  *Order
	Errors []error
}

func (e *SideEffectError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("order %s created, post-commit actions failed: %s", e.Order.ID, strings.Join(msgs, "; "))
}

func (e *SideEffectError) Unwrap() []error {
	return e.Errors
}
