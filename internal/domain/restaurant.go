package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxPrice = decimal.New(1, 8) // NUMERIC(10,2)

// Restaurant is a catalog entry. It is active only once it has a menu item.
type Restaurant struct {
	ID          uuid.UUID  `json:"restaurant_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Address     string     `json:"address"`
	PhoneNumber *string    `json:"phone_number"`
	Email       *string    `json:"email"`
	IsActive    bool       `json:"is_active"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	MenuItems   []MenuItem `json:"menu_items,omitempty"`
}

type MenuItem struct {
	ID           uuid.UUID       `json:"item_id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     *string         `json:"category"`
	IsAvailable  bool            `json:"is_available"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewRestaurant creates an inactive restaurant.
func NewRestaurant(name, address string) (*Restaurant, error) {
	r := &Restaurant{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Address:   strings.TrimSpace(address),
		CreatedAt: time.Now().UTC(),
	}
	r.UpdatedAt = r.CreatedAt

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Restaurant) Validate() error {
	var fields []FieldError

	if n := utf8.RuneCountInString(r.Name); n < 1 || n > 255 {
		fields = append(fields, FieldError{Field: "name", Message: "name must be 1-255 characters"})
	}
	if n := utf8.RuneCountInString(r.Address); n < 5 || n > 500 {
		fields = append(fields, FieldError{Field: "address", Message: "address must be 5-500 characters"})
	}
	if r.PhoneNumber != nil && utf8.RuneCountInString(*r.PhoneNumber) > 50 {
		fields = append(fields, FieldError{Field: "phone_number", Message: "phone number must not exceed 50 characters"})
	}
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		fields = append(fields, FieldError{Field: "latitude", Message: "latitude must be between -90 and 90"})
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		fields = append(fields, FieldError{Field: "longitude", Message: "longitude must be between -180 and 180"})
	}

	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

// Ref returns the short form embedded into orders.
func (r *Restaurant) Ref() *RestaurantRef {
	return &RestaurantRef{ID: r.ID, Name: r.Name}
}

// NewMenuItem creates an available menu item for the given restaurant.
func NewMenuItem(restaurantID uuid.UUID, name string, price decimal.Decimal) (*MenuItem, error) {
	m := &MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(name),
		Price:        price,
		IsAvailable:  true,
		CreatedAt:    time.Now().UTC(),
	}
	m.UpdatedAt = m.CreatedAt

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MenuItem) Validate() error {
	var fields []FieldError

	if m.RestaurantID == uuid.Nil {
		fields = append(fields, FieldError{Field: "restaurant_id", Message: "restaurant id is required"})
	}
	if n := utf8.RuneCountInString(m.Name); n < 1 || n > 255 {
		fields = append(fields, FieldError{Field: "name", Message: "name must be 1-255 characters"})
	}
	if err := ValidatePrice(m.Price); err != nil {
		fields = append(fields, FieldError{Field: "price", Message: err.Error()})
	}
	if m.Category != nil && utf8.RuneCountInString(*m.Category) > 100 {
		fields = append(fields, FieldError{Field: "category", Message: "category must not exceed 100 characters"})
	}

	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

type priceError string

func (e priceError) Error() string { return string(e) }

// ValidatePrice accepts positive amounts with at most two decimal places.
func ValidatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return priceError("price must be greater than 0")
	}
	if !p.Equal(p.Truncate(2)) {
		return priceError("price must have at most 2 decimal places")
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return priceError("price is too large")
	}
	return nil
}
