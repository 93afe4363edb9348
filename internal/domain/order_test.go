package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeRestaurant(t *testing.T) *Restaurant {
	t.Helper()
	r, err := NewRestaurant("Noodle House", "7 Harbour Lane")
	require.NoError(t, err)
	r.IsActive = true
	return r
}

func menuItem(t *testing.T, r *Restaurant, price string) MenuItem {
	t.Helper()
	m, err := NewMenuItem(r.ID, "Ramen", decimal.RequireFromString(price))
	require.NoError(t, err)
	return *m
}

func TestNewOrder_Total(t *testing.T) {
	r := activeRestaurant(t)
	a := menuItem(t, r, "0.10")
	b := menuItem(t, r, "0.20")

	order, err := NewOrder(uuid.New(), r, "1 Elm Road",
		[]OrderLine{{ItemID: a.ID, Quantity: 3}, {ItemID: b.ID, Quantity: 1}},
		[]MenuItem{a, b})
	require.NoError(t, err)

	assert.Equal(t, "0.50", order.TotalAmount.StringFixed(2))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, StatusPendingConfirmation, order.Status)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}
}

func TestNewOrder_RejectsUnavailable(t *testing.T) {
	r := activeRestaurant(t)
	ok := menuItem(t, r, "5.00")
	off := menuItem(t, r, "6.00")
	off.IsAvailable = false

	other := activeRestaurant(t)
	foreign := menuItem(t, other, "7.00")

	_, err := NewOrder(uuid.New(), r, "1 Elm Road",
		[]OrderLine{{ItemID: ok.ID, Quantity: 1}, {ItemID: off.ID, Quantity: 1}, {ItemID: foreign.ID, Quantity: 1}},
		[]MenuItem{ok, off, foreign})

	var unavailable *UnavailableItemsError
	require.True(t, errors.As(err, &unavailable))
	assert.ElementsMatch(t, []uuid.UUID{off.ID, foreign.ID}, unavailable.ItemIDs)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewOrder_RejectsTotalBeyondColumn(t *testing.T) {
	r := activeRestaurant(t)
	m := menuItem(t, r, "99.99")

	_, err := NewOrder(uuid.New(), r, "1 Elm Road", []OrderLine{{ItemID: m.ID, Quantity: 10000000}}, []MenuItem{m})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "total_amount", verr.Fields[0].Field)
}

func TestValidateOrderRequest(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		addr   string
		lines  []OrderLine
		fields []string
	}{
		{"valid", "1 Elm Road", []OrderLine{{ItemID: id, Quantity: 1}}, nil},
		{"short address", "1 El", []OrderLine{{ItemID: id, Quantity: 1}}, []string{"delivery_address"}},
		{"long address", strings.Repeat("a", 501), []OrderLine{{ItemID: id, Quantity: 1}}, []string{"delivery_address"}},
		{"multibyte address counts runes", "ул. Абай", []OrderLine{{ItemID: id, Quantity: 1}}, nil},
		{"no items", "1 Elm Road", nil, []string{"items"}},
		{"zero quantity", "1 Elm Road", []OrderLine{{ItemID: id, Quantity: 0}}, []string{"items.quantity"}},
		{"quantity beyond column", "1 Elm Road", []OrderLine{{ItemID: id, Quantity: MaxQuantity + 1}}, []string{"items.quantity"}},
		{"nil item id", "1 Elm Road", []OrderLine{{ItemID: uuid.Nil, Quantity: 2}}, []string{"items.item_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderRequest(tt.addr, tt.lines)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestValidatePrice(t *testing.T) {
	for _, p := range []string{"0.01", "9.99", "10", "99999999.99"} {
		assert.NoError(t, ValidatePrice(decimal.RequireFromString(p)), p)
	}
	for _, p := range []string{"0", "-1", "1.999", "100000000"} {
		assert.Error(t, ValidatePrice(decimal.RequireFromString(p)), p)
	}
}

func TestStatus(t *testing.T) {
	s, err := ParseStatus("ready_for_pickup")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, s)

	_, err = ParseStatus("shipped")
	assert.ErrorIs(t, err, ErrValidation)

	assert.True(t, IsRecommendedTransition(StatusPendingConfirmation, StatusConfirmed))
	assert.True(t, IsRecommendedTransition(StatusPreparing, StatusPreparing))
	assert.False(t, IsRecommendedTransition(StatusDelivered, StatusPendingConfirmation))

	order := &Order{Status: StatusDelivered}
	assert.False(t, order.SetStatus(StatusPendingConfirmation))
	assert.Equal(t, StatusPendingConfirmation, order.Status)
}
