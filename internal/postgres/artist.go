package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vietart/artmarket/internal/domain"
)

// ArtistStore implements domain.ArtistStore using PostgreSQL.
type ArtistStore struct {
	pool *pgxpool.Pool
}

var _ domain.ArtistStore = (*ArtistStore)(nil)

// NewArtistStore creates a new PostgreSQL-backed artist store.
func NewArtistStore(pool *pgxpool.Pool) *ArtistStore {
	return &ArtistStore{pool: pool}
}

const artistColumns = `id, name, bio, avatar, featured, created_at, updated_at`

func scanArtist(row pgx.Row) (*domain.Artist, error) {
	var (
		a         domain.Artist
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &a.Name, &a.Bio, &a.Avatar, &a.Featured, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.ID = fromPGUUID(id)
	a.CreatedAt = fromPGTime(createdAt)
	a.UpdatedAt = fromPGTime(updatedAt)
	return &a, nil
}

// Get retrieves an artist by ID.
func (s *ArtistStore) Get(ctx context.Context, id uuid.UUID) (*domain.Artist, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = $1`, pgUUID(id))

	artist, err := scanArtist(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArtistNotFound
		}
		return nil, domain.Internal(err, "artist.get", "failed to get artist")
	}
	return artist, nil
}

// List returns all artists, featured first, then by name.
func (s *ArtistStore) List(ctx context.Context) ([]domain.Artist, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+artistColumns+` FROM artists ORDER BY featured DESC, name`)
	if err != nil {
		return nil, domain.Internal(err, "artist.list", "failed to list artists")
	}
	defer rows.Close()

	artists := []domain.Artist{}
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, domain.Internal(err, "artist.list", "failed to scan artist")
		}
		artists = append(artists, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "artist.list", "failed to read artists")
	}
	return artists, nil
}

// Create inserts a new artist.
func (s *ArtistStore) Create(ctx context.Context, params domain.CreateArtistParams) (*domain.Artist, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO artists (name, bio, avatar, featured)
		VALUES ($1, $2, $3, $4)
		RETURNING `+artistColumns,
		params.Name, params.Bio, params.Avatar, params.Featured)

	artist, err := scanArtist(row)
	if err != nil {
		return nil, domain.Internal(err, "artist.create", "failed to create artist")
	}
	return artist, nil
}

// Update applies a partial update; nil fields keep their current value.
// A name change is propagated to the denormalized artist_name on products.
func (s *ArtistStore) Update(ctx context.Context, id uuid.UUID, params domain.UpdateArtistParams) (*domain.Artist, error) {
	var artist *domain.Artist
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE artists SET
				name       = COALESCE($2, name),
				bio        = COALESCE($3, bio),
				avatar     = COALESCE($4, avatar),
				featured   = COALESCE($5, featured),
				updated_at = now()
			WHERE id = $1
			RETURNING `+artistColumns,
			pgUUID(id), params.Name, params.Bio, params.Avatar, params.Featured)

		var err error
		artist, err = scanArtist(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrArtistNotFound
			}
			return domain.Internal(err, "artist.update", "failed to update artist")
		}

		if params.Name != nil {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET artist_name = $2, updated_at = now() WHERE artist_id = $1`,
				pgUUID(id), *params.Name); err != nil {
				return domain.Internal(err, "artist.update", "failed to propagate artist name")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return artist, nil
}

// Delete removes an artist.
func (s *ArtistStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM artists WHERE id = $1`, pgUUID(id))
	if err != nil {
		return domain.Internal(err, "artist.delete", "failed to delete artist")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArtistNotFound
	}
	return nil
}
