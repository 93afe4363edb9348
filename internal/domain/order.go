package domain

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinDeliveryAddressLen = 5
	MaxDeliveryAddressLen = 500

	// MaxQuantity matches the INTEGER quantity column.
	MaxQuantity = math.MaxInt32
)

// Order represents a placed food order. TotalAmount is fixed at creation.
type Order struct {
	ID              uuid.UUID       `json:"order_id"`
	UserID          uuid.UUID       `json:"user_id"`
	RestaurantID    uuid.UUID       `json:"restaurant_id"`
	Status          Status          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryAddress string          `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `json:"items"`
	Restaurant      *RestaurantRef  `json:"restaurant,omitempty"`
}

// OrderItem is one order line. PricePerItem is the menu price snapshotted
// when the order was placed and is never re-read from the catalog.
type OrderItem struct {
	ID           uuid.UUID       `json:"order_item_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	MenuItem     *MenuItem       `json:"menu_item,omitempty"`
}

// RestaurantRef is the short restaurant view embedded in orders.
type RestaurantRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// OrderLine is one requested (menu item, quantity) pair.
type OrderLine struct {
	ItemID   uuid.UUID
	Quantity int
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PricePerItem.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidateOrderRequest checks the request shape before any lookup happens.
func ValidateOrderRequest(deliveryAddress string, lines []OrderLine) error {
	var fields []FieldError

	n := utf8.RuneCountInString(deliveryAddress)
	if n < MinDeliveryAddressLen || n > MaxDeliveryAddressLen {
		fields = append(fields, FieldError{
			Field:   "delivery_address",
			Message: "delivery address must be 5-500 characters",
		})
	}

	if len(lines) == 0 {
		fields = append(fields, FieldError{
			Field:   "items",
			Message: "order must contain at least 1 item",
		})
	}

	for _, l := range lines {
		if l.ItemID == uuid.Nil {
			fields = append(fields, FieldError{Field: "items.item_id", Message: "item id is required"})
		}
		if l.Quantity < 1 {
			fields = append(fields, FieldError{Field: "items.quantity", Message: "quantity must be greater than 0"})
		} else if l.Quantity > MaxQuantity {
			fields = append(fields, FieldError{Field: "items.quantity", Message: "quantity is too large"})
		}
	}

	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

// DistinctItemIDs returns requested item ids without repeats, in first-seen order.
func DistinctItemIDs(lines []OrderLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	return ids
}

// NewOrder builds a pending order from the requested lines and the menu items
// resolved for them. Every distinct requested id must be present in resolved,
// otherwise the whole order is rejected with all missing ids named.
// Repeated item ids become separate lines.
func NewOrder(userID uuid.UUID, restaurant *Restaurant, deliveryAddress string, lines []OrderLine, resolved []MenuItem) (*Order, error) {
	if err := ValidateOrderRequest(deliveryAddress, lines); err != nil {
		return nil, err
	}

	menu := make(map[uuid.UUID]MenuItem, len(resolved))
	for _, m := range resolved {
		if m.RestaurantID != restaurant.ID || !m.IsAvailable {
			continue
		}
		menu[m.ID] = m
	}

	var missing []uuid.UUID
	for _, id := range DistinctItemIDs(lines) {
		if _, ok := menu[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &UnavailableItemsError{RestaurantID: restaurant.ID, ItemIDs: missing}
	}

	now := time.Now().UTC()
	order := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		RestaurantID:    restaurant.ID,
		Status:          StatusPendingConfirmation,
		DeliveryAddress: deliveryAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
		Restaurant:      &RestaurantRef{ID: restaurant.ID, Name: restaurant.Name},
		Items:           make([]OrderItem, 0, len(lines)),
	}

	for _, l := range lines {
		m := menu[l.ItemID]
		order.Items = append(order.Items, OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ItemID:       l.ItemID,
			Quantity:     l.Quantity,
			PricePerItem: m.Price,
		})
	}

	order.CalculateTotal()
	if order.TotalAmount.GreaterThanOrEqual(maxPrice) {
		return nil, NewValidationError(FieldError{Field: "total_amount", Message: "order total is too large"})
	}

	return order, nil
}

// CalculateTotal sums all line totals with exact decimal arithmetic.
func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	o.TotalAmount = total.Round(2)
}

// SetStatus overwrites the status unconditionally and reports whether the
// change followed the recommended lifecycle.
func (o *Order) SetStatus(newStatus Status) (recommended bool) {
	recommended = IsRecommendedTransition(o.Status, newStatus)
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	return recommended
}
