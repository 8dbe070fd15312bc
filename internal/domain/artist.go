package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var ErrArtistNotFound = &Error{Code: ENOTFOUND, Message: "Artist not found"}

// Artist is a creator whose pieces are listed on the marketplace. Name is
// denormalized onto products and order line snapshots.
type Artist struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateArtistParams contains the fields accepted when creating an artist.
type CreateArtistParams struct {
	Name     string
	Bio      string
	Avatar   string
	Featured bool
}

// UpdateArtistParams contains optional fields for partial artist updates.
type UpdateArtistParams struct {
	Name     *string
	Bio      *string
	Avatar   *string
	Featured *bool
}

// ArtistStore is the persistence contract for artists.
type ArtistStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Artist, error)
	List(ctx context.Context) ([]Artist, error)
	Create(ctx context.Context, params CreateArtistParams) (*Artist, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateArtistParams) (*Artist, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
