package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/vietart/artmarket/internal/billing"
	"github.com/vietart/artmarket/internal/domain"
)

// WebhookHandler receives payment gateway callbacks.
type WebhookHandler struct {
	billing billing.Provider
	orders  domain.OrderService
	logger  *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(billingProvider billing.Provider, orders domain.OrderService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{billing: billingProvider, orders: orders, logger: logger}
}

type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// Stripe handles POST /webhooks/stripe. The raw body is verified against the
// signature header before anything is parsed; unverified payloads are
// rejected with 400 so Stripe retries.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondInvalid(w, "Unable to read webhook payload")
		return
	}

	if err := h.billing.VerifyWebhookSignature(payload, r.Header.Get("Stripe-Signature")); err != nil {
		h.logger.Warn("rejected webhook with bad signature", "error", err)
		respondInvalid(w, "Invalid webhook signature")
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		respondInvalid(w, "Malformed webhook payload")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		h.settle(w, r, event.Data.Object.ID, domain.PaymentPaid)
	case "payment_intent.payment_failed":
		h.settle(w, r, event.Data.Object.ID, domain.PaymentFailed)
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
		respond(w, http.StatusOK, "Event ignored", nil)
	}
}

func (h *WebhookHandler) settle(w http.ResponseWriter, r *http.Request, intentID string, status domain.PaymentStatus) {
	if intentID == "" {
		respondInvalid(w, "Malformed webhook payload")
		return
	}

	order, err := h.orders.SettlePayment(r.Context(), intentID, status)
	if err != nil {
		// An intent with no matching order is acknowledged: the order may
		// have been created by another environment sharing the account.
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			h.logger.Warn("webhook for unknown payment intent", "payment_intent_id", intentID)
			respond(w, http.StatusOK, "Event ignored", nil)
			return
		}
		respondError(w, r, h.logger, err)
		return
	}

	respond(w, http.StatusOK, "Payment "+string(status), map[string]string{
		"orderNumber": order.OrderNumber,
	})
}
