package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	PhoneNumber    *string   `json:"phone_number"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser builds an active user. The password must already be hashed.
func NewUser(username, hashedPassword string, role Role, phoneNumber string) (*User, error) {
	u := &User{
		ID:             uuid.New(),
		Username:       strings.TrimSpace(username),
		HashedPassword: hashedPassword,
		Role:           role,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	u.UpdatedAt = u.CreatedAt

	if phone := strings.TrimSpace(phoneNumber); phone != "" {
		u.PhoneNumber = &phone
	}

	var fields []FieldError
	if n := utf8.RuneCountInString(u.Username); n < 1 || n > 255 {
		fields = append(fields, FieldError{Field: "username", Message: "username must be 1-255 characters"})
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		fields = append(fields, FieldError{Field: "role", Message: "role must be user or admin"})
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}

	return u, nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
