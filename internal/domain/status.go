package domain

import "fmt"

type Status string

const (
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusConfirmed           Status = "confirmed"
	StatusPreparing           Status = "preparing"
	StatusReadyForPickup      Status = "ready_for_pickup"
	StatusDelivered           Status = "delivered"
	StatusCancelled           Status = "cancelled"
)

// AllStatuses lists every valid order status in lifecycle order.
var AllStatuses = []Status{
	StatusPendingConfirmation,
	StatusConfirmed,
	StatusPreparing,
	StatusReadyForPickup,
	StatusDelivered,
	StatusCancelled,
}

// ParseStatus converts a raw string into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	for _, s := range AllStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", NewValidationError(FieldError{
		Field:   "status",
		Message: fmt.Sprintf("unknown status %q", raw),
	})
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// recommendedTransitions documents the forward path an order normally takes.
// Admin updates are not restricted by it; it only drives override warnings.
var recommendedTransitions = map[Status][]Status{
	StatusPendingConfirmation: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:           {StatusPreparing, StatusCancelled},
	StatusPreparing:           {StatusReadyForPickup, StatusCancelled},
	StatusReadyForPickup:      {StatusDelivered, StatusCancelled},
	StatusDelivered:           {},
	StatusCancelled:           {},
}

// IsRecommendedTransition reports whether moving from one status to another
// follows the normal order lifecycle. Setting the same status is a no-op and
// counts as recommended.
func IsRecommendedTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range recommendedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)
