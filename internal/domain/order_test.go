package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to confirmed", OrderPending, OrderConfirmed, true},
		{"confirmed to processing", OrderConfirmed, OrderProcessing, true},
		{"processing to shipped", OrderProcessing, OrderShipped, true},
		{"shipped to delivered", OrderShipped, OrderDelivered, true},
		{"skip ahead pending to shipped", OrderPending, OrderShipped, true},
		{"backwards shipped to confirmed", OrderShipped, OrderConfirmed, false},
		{"backwards confirmed to pending", OrderConfirmed, OrderPending, false},
		{"same status", OrderProcessing, OrderProcessing, false},
		{"cancel pending", OrderPending, OrderCancelled, true},
		{"cancel shipped", OrderShipped, OrderCancelled, true},
		{"delivered is terminal", OrderDelivered, OrderCancelled, false},
		{"cancelled is terminal", OrderCancelled, OrderConfirmed, false},
		{"cancelled cannot be cancelled again", OrderCancelled, OrderCancelled, false},
		{"unknown from", OrderStatus("draft"), OrderConfirmed, false},
		{"unknown to", OrderPending, OrderStatus("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCOD, PaymentBankTransfer, PaymentStripe, PaymentPayPal} {
		assert.True(t, m.Valid(), string(m))
	}
	assert.False(t, PaymentMethod("bitcoin").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
