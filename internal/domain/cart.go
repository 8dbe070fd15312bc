package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cart domain errors.
var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Item not found in cart"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be between 1 and 99"}
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 99

// CartLine is one (product, quantity, price) entry in a cart. Price is
// captured when the line is first added and is never refreshed from the live
// product price: it is the price the buyer agreed to.
type CartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
	Price     int64     `json:"price"`
	AddedAt   time.Time `json:"addedAt"`
}

// Cart holds one user's pending purchases. TotalItems and TotalPrice are
// derived from the lines and recomputed by the store on every mutation;
// they are never incrementally patched.
type Cart struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Items      []CartLine `json:"items"`
	TotalItems int32      `json:"totalItems"`
	TotalPrice int64      `json:"totalPrice"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ComputeTotals recomputes the derived totals from the lines. Stores call
// this (or its SQL equivalent) at the end of every mutating operation.
func (c *Cart) ComputeTotals() {
	var items int32
	var price int64
	for _, line := range c.Items {
		items += line.Quantity
		price += int64(line.Quantity) * line.Price
	}
	c.TotalItems = items
	c.TotalPrice = price
}

// CartLineProduct is the display-ready resolution of a line's product
// reference. PriceValue is the product's current price, which may differ
// from the line's committed Price.
type CartLineProduct struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Image       string    `json:"image"`
	PriceValue  int64     `json:"priceValue"`
	ArtistName  string    `json:"artistName"`
	IsAvailable bool      `json:"isAvailable"`
	Stock       int32     `json:"stock"`
}

// CartLineView layers the resolved product on top of the stored line.
type CartLineView struct {
	ProductID uuid.UUID        `json:"productId"`
	Product   *CartLineProduct `json:"product,omitempty"`
	Quantity  int32            `json:"quantity"`
	Price     int64            `json:"price"`
	LineTotal int64            `json:"lineTotal"`
	AddedAt   time.Time        `json:"addedAt"`
}

// CartView is the cart representation returned to callers.
type CartView struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"userId"`
	Items      []CartLineView `json:"items"`
	TotalItems int32          `json:"totalItems"`
	TotalPrice int64          `json:"totalPrice"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// MergeLineParams adds quantity to a cart line, creating the line when absent.
// Stock and Title carry the product's live stock and display title so the
// store can validate the merged quantity, and report failures readably,
// inside the same transaction as the write.
type MergeLineParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Price     int64
	Stock     int32
	Title     string
}

// CartStore is the persistence contract for carts. All operations are keyed
// by user ID (one cart per user) and each mutation is atomic: the line write
// and the totals recomputation commit together or not at all.
type CartStore interface {
	// GetOrCreate returns the user's cart, persisting an empty one on first access.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Get returns the user's cart. Returns ErrCartNotFound if none exists.
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// MergeLine atomically increments (or inserts) a line. If the merged
	// quantity would exceed params.Stock the transaction rolls back with an
	// insufficient-stock error; exceeding MaxLineQuantity rolls back with
	// ErrInvalidQuantity. Nothing is written on failure.
	MergeLine(ctx context.Context, params MergeLineParams) (*Cart, error)

	// SetLineQuantity replaces a line's quantity. Returns ErrCartItemNotFound
	// when no line matches the product.
	SetLineQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*Cart, error)

	// RemoveLine deletes a line. Returns ErrCartItemNotFound when absent.
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*Cart, error)

	// Clear empties the cart, creating it first when absent (idempotent).
	Clear(ctx context.Context, userID uuid.UUID) (*Cart, error)
}

// CartService provides the cart business logic: stock-bounded mutations with
// price-at-add capture, returning display-ready cart views.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddLine(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartView, error)
	UpdateLine(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartView, error)
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
}
