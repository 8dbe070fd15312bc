package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Order domain errors.
var (
	ErrOrderNotFound = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyOrder    = &Error{Code: EINVALID, Message: "Order must contain at least one item"}
)

// OrderNumberPrefix prefixes every human-readable order number. The full
// number is the prefix plus a zero-padded six digit sequence, e.g. ART000042.
const OrderNumberPrefix = "ART"

// PaymentMethod enumerates how a buyer intends to pay. Payment capture is
// external; the order only records the method and the resulting status.
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentStripe       PaymentMethod = "stripe"
	PaymentPayPal       PaymentMethod = "paypal"
)

// Valid reports whether the payment method is a known value.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentStripe, PaymentPayPal:
		return true
	}
	return false
}

// PaymentStatus tracks the external payment lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// statusRank orders the forward-only fulfillment progression.
var statusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderProcessing: 2,
	OrderShipped:    3,
	OrderDelivered:  4,
}

// CanTransition reports whether an order may move from one status to another.
// Fulfillment only moves forward along
// pending -> confirmed -> processing -> shipped -> delivered; cancelled is
// reachable from any non-terminal state. Delivered and cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	if from == OrderDelivered || from == OrderCancelled {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// ShippingAddress is the delivery address snapshot stored on the order.
type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Street   string `json:"street" validate:"required"`
	Ward     string `json:"ward" validate:"required"`
	District string `json:"district" validate:"required"`
	City     string `json:"city" validate:"required"`
}

// OrderLine is an immutable snapshot of a purchased product. Title, image,
// artist name and price are copied at order time so later product edits or
// deletions never alter historical orders.
type OrderLine struct {
	ProductID    uuid.UUID `json:"productId"`
	ProductTitle string    `json:"productTitle"`
	ProductImage string    `json:"productImage"`
	ArtistName   string    `json:"artistName"`
	Quantity     int32     `json:"quantity"`
	Price        int64     `json:"price"`
	TotalPrice   int64     `json:"totalPrice"`
}

// Order is a placed order. TotalAmount is always Subtotal+ShippingFee,
// recomputed at creation and never trusted from input. Orders are never
// deleted; status fields are mutated by fulfillment actions.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          uuid.UUID       `json:"userId"`
	Items           []OrderLine     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	Subtotal        int64           `json:"subtotal"`
	ShippingFee     int64           `json:"shippingFee"`
	TotalAmount     int64           `json:"totalAmount"`
	Currency        string          `json:"currency"`
	Notes           string          `json:"notes,omitempty"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItemRequest is one requested (product, quantity) pair at checkout.
type OrderItemRequest struct {
	ProductID uuid.UUID
	Quantity  int32
}

// CreateOrderParams is the Order Assembler input.
type CreateOrderParams struct {
	UserID          uuid.UUID
	Items           []OrderItemRequest
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	Notes           string
}

// PlaceOrderParams carries a fully validated, fully priced order into the
// store. The store commits the stock decrements, the order number allocation
// and the order insert in a single transaction.
type PlaceOrderParams struct {
	UserID          uuid.UUID
	Items           []OrderLine
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	Subtotal        int64
	ShippingFee     int64
	TotalAmount     int64
	Currency        string
	Notes           string
	PaymentIntentID string
}

// OrderListParams filters and paginates order listings.
type OrderListParams struct {
	UserID *uuid.UUID // nil lists all users' orders (admin)
	Status OrderStatus
	Page   int
	Limit  int
}

// UpdateOrderStatusParams mutates fulfillment fields on an existing order.
type UpdateOrderStatusParams struct {
	Status         OrderStatus
	TrackingNumber string
}

// OrderStore is the persistence contract for orders.
type OrderStore interface {
	// PlaceOrder atomically decrements stock for every line, allocates the
	// next order number and persists the order. Any line whose conditional
	// stock decrement affects zero rows aborts the whole transaction: no
	// partial decrement is ever visible.
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error)

	// Get retrieves an order by ID. Returns ErrOrderNotFound if missing.
	Get(ctx context.Context, id uuid.UUID) (*Order, error)

	// List returns orders matching params, newest first, with the total count.
	List(ctx context.Context, params OrderListParams) ([]Order, int64, error)

	// UpdateStatus persists a status change together with tracking and
	// shipped/delivered timestamps.
	UpdateStatus(ctx context.Context, id uuid.UUID, params UpdateOrderStatusParams) (*Order, error)

	// SetPaymentStatusByIntent updates the payment status of the order
	// carrying the given payment intent. Returns ErrOrderNotFound if no
	// order references the intent.
	SetPaymentStatusByIntent(ctx context.Context, paymentIntentID string, status PaymentStatus) (*Order, error)
}

// OrderService is the Order Assembler plus the read operations built on it.
type OrderService interface {
	// CreateOrder validates the requested items against live inventory,
	// prices them, commits the order and clears the buyer's cart.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error)

	// GetOrder returns an order scoped to its owner; admins may read any order.
	GetOrder(ctx context.Context, orderID, userID uuid.UUID, admin bool) (*Order, error)

	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int64, error)

	// ListAllOrders returns orders across all users, optionally filtered by status.
	ListAllOrders(ctx context.Context, status OrderStatus, page, limit int) ([]Order, int64, error)

	// UpdateOrderStatus moves an order along the fulfillment progression,
	// rejecting transitions the state machine forbids. Cancelling a paid
	// card order refunds the payment first.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, params UpdateOrderStatusParams) (*Order, error)

	// SettlePayment records the outcome reported by the payment gateway for
	// the order referencing the given payment intent.
	SettlePayment(ctx context.Context, paymentIntentID string, status PaymentStatus) (*Order, error)
}
