// Package billing abstracts payment processing behind a Provider interface.
// Orders paid by card create a payment intent before the order commits;
// cash-on-delivery and bank-transfer orders skip the provider entirely.
package billing

import (
	"context"
	"time"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, PayPal, etc.
type Provider interface {
	// CreatePaymentIntent creates a payment intent for a one-time charge.
	// Returns the intent with client_secret for frontend confirmation.
	CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)

	// GetPaymentIntent retrieves an existing payment intent.
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// CancelPaymentIntent cancels a payment intent that hasn't been confirmed.
	CancelPaymentIntent(ctx context.Context, paymentIntentID string) error

	// RefundPayment refunds a completed payment. A zero amount refunds in full.
	RefundPayment(ctx context.Context, paymentIntentID string, amount int64) (*Refund, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	VerifyWebhookSignature(payload []byte, signature string) error
}

// CreatePaymentIntentParams contains parameters for creating a payment intent.
type CreatePaymentIntentParams struct {
	// Amount in the smallest currency unit. VND has no minor unit, so this
	// is the amount in dong.
	Amount int64

	// Currency code (ISO 4217 lowercase), e.g. "vnd".
	Currency string

	// CustomerEmail prefills the payer email in the payment sheet.
	CustomerEmail string

	// Description appears on the customer's statement.
	Description string

	// Metadata for filtering and reporting (order number, user id).
	Metadata map[string]string

	// IdempotencyKey prevents duplicate payment intents on retried checkouts.
	IdempotencyKey string
}

// PaymentIntent represents a provider payment intent.
type PaymentIntent struct {
	// ID is the provider payment intent ID (pi_... for Stripe).
	ID string

	// ClientSecret is used by the frontend to confirm the payment.
	ClientSecret string

	Amount   int64
	Currency string

	// Status: requires_payment_method, requires_confirmation, succeeded, etc.
	Status string

	Metadata  map[string]string
	CreatedAt time.Time
}

// Refund represents a payment refund.
type Refund struct {
	ID        string
	PaymentID string
	Amount    int64
	Status    string // succeeded, pending, failed
	CreatedAt time.Time
}
