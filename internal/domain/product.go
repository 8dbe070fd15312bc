package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// ProductUnavailable creates the error returned when a product's availability
// flag is off. Availability overrides stock: an unavailable product cannot be
// purchased no matter how many units remain.
func ProductUnavailable(op, title string) error {
	return Errorf(EINVALID, op, "Product %q is not available", title)
}

// InsufficientStock creates the error returned when a requested quantity
// exceeds live stock. The message always surfaces the available count.
func InsufficientStock(op, title string, available int32) error {
	return Errorf(EINVALID, op, "Insufficient stock for %q. Available: %d", title, available)
}

// Dimensions describes the physical size of an art piece.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth,omitempty"`
	Unit   string  `json:"unit"`
}

// Product is a purchasable art piece. ArtistName is denormalized from the
// artist record at write time so catalog reads avoid a join.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PriceValue  int64      `json:"priceValue"`
	Currency    string     `json:"currency"`
	Images      []string   `json:"images"`
	Category    string     `json:"category"`
	Dimensions  Dimensions `json:"dimensions"`
	Material    string     `json:"material"`
	Year        int32      `json:"year"`
	ArtistID    uuid.UUID  `json:"artistId"`
	ArtistName  string     `json:"artistName"`
	IsAvailable bool       `json:"isAvailable"`
	Stock       int32      `json:"stock"`
	Featured    bool       `json:"featured"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
// Order line snapshots use this value.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// CreateProductParams contains the fields accepted when creating a product.
type CreateProductParams struct {
	Title       string
	Description string
	PriceValue  int64
	Currency    string
	Images      []string
	Category    string
	Dimensions  Dimensions
	Material    string
	Year        int32
	ArtistID    uuid.UUID
	IsAvailable bool
	Stock       int32
	Featured    bool
}

// UpdateProductParams contains optional fields for partial product updates.
// Nil pointers leave the existing value untouched.
type UpdateProductParams struct {
	Title       *string
	Description *string
	PriceValue  *int64
	Images      []string
	Category    *string
	Material    *string
	IsAvailable *bool
	Stock       *int32
	Featured    *bool
}

// ProductStore is the persistence contract for products, including the stock
// ledger operations the cart and order workflows depend on.
type ProductStore interface {
	// Get retrieves a product by ID. Returns ErrProductNotFound if missing.
	Get(ctx context.Context, id uuid.UUID) (*Product, error)

	// ListAvailable returns available products, newest first.
	ListAvailable(ctx context.Context) ([]Product, error)

	// List returns all products (including unavailable) with pagination.
	List(ctx context.Context, page, limit int) ([]Product, int64, error)

	// Create inserts a new product.
	Create(ctx context.Context, params CreateProductParams, artistName string) (*Product, error)

	// Update applies a partial update and returns the updated product.
	Update(ctx context.Context, id uuid.UUID, params UpdateProductParams) (*Product, error)

	// Delete removes a product. Returns ErrProductNotFound if missing.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductService provides catalog business logic consumed by the handlers.
type ProductService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListAllProducts(ctx context.Context, page, limit int) ([]Product, int64, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
