package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var ErrCategoryNotFound = &Error{Code: ENOTFOUND, Message: "Category not found"}

// Category groups products for browsing.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateCategoryParams contains the fields accepted when creating a category.
type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description string
}

// UpdateCategoryParams contains optional fields for partial category updates.
type UpdateCategoryParams struct {
	Name        *string
	Slug        *string
	Description *string
}

// CategoryStore is the persistence contract for categories.
type CategoryStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, params CreateCategoryParams) (*Category, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateCategoryParams) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
