package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePrices_ChargesShippingBelowThreshold(t *testing.T) {
	p := CalculatePrices([]OrderItem{
		{Price: 19.99, Quantity: 2},
		{Price: 5.50, Quantity: 1},
	})

	assert.Equal(t, 45.48, p.Items)
	assert.Equal(t, 6.82, p.Tax)
	assert.Equal(t, ShippingFee, p.Shipping)
	assert.Equal(t, 62.30, p.Total)
}

func TestCalculatePrices_FreeShippingAboveThreshold(t *testing.T) {
	p := CalculatePrices([]OrderItem{{Price: 120, Quantity: 1}})

	assert.Equal(t, 120.0, p.Items)
	assert.Equal(t, 18.0, p.Tax)
	assert.Equal(t, 0.0, p.Shipping)
	assert.Equal(t, 138.0, p.Total)
}

func TestCalculatePrices_ExactlyThresholdPaysShipping(t *testing.T) {
	p := CalculatePrices([]OrderItem{{Price: 50, Quantity: 2}})
	assert.Equal(t, ShippingFee, p.Shipping)
}

func TestCalculatePrices_Empty(t *testing.T) {
	p := CalculatePrices(nil)
	assert.Equal(t, Prices{}, p)
}

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPaid, OrderStatusDelivered, true},
		{OrderStatusPaid, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPaid, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestUser_DefaultAddress(t *testing.T) {
	u := &User{Addresses: []Address{{City: "A"}, {City: "B", IsDefault: true}}}
	a, ok := u.DefaultAddress()
	assert.True(t, ok)
	assert.Equal(t, "B", a.City)

	_, ok = (&User{}).DefaultAddress()
	assert.False(t, ok)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("ada@example.com"))
	assert.False(t, ValidEmail("ada"))
	assert.False(t, ValidEmail("Ada <ada@example.com>"))
	assert.False(t, ValidEmail("ada@localhost"))
	assert.False(t, ValidEmail(""))
}
