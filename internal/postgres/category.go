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

// CategoryStore implements domain.CategoryStore using PostgreSQL.
type CategoryStore struct {
	pool *pgxpool.Pool
}

var _ domain.CategoryStore = (*CategoryStore)(nil)

// NewCategoryStore creates a new PostgreSQL-backed category store.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c         domain.Category
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &c.Name, &c.Slug, &c.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.ID = fromPGUUID(id)
	c.CreatedAt = fromPGTime(createdAt)
	c.UpdatedAt = fromPGTime(updatedAt)
	return &c, nil
}

// Get retrieves a category by ID.
func (s *CategoryStore) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, pgUUID(id))

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.Internal(err, "category.get", "failed to get category")
	}
	return category, nil
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, domain.Internal(err, "category.list", "failed to list categories")
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, domain.Internal(err, "category.list", "failed to scan category")
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "category.list", "failed to read categories")
	}
	return categories, nil
}

// Create inserts a new category. A duplicate slug is a conflict.
func (s *CategoryStore) Create(ctx context.Context, params domain.CreateCategoryParams) (*domain.Category, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		params.Name, params.Slug, params.Description)

	category, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("category.create", "Category slug already exists")
		}
		return nil, domain.Internal(err, "category.create", "failed to create category")
	}
	return category, nil
}

// Update applies a partial update; nil fields keep their current value.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, params domain.UpdateCategoryParams) (*domain.Category, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE categories SET
			name        = COALESCE($2, name),
			slug        = COALESCE($3, slug),
			description = COALESCE($4, description),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		pgUUID(id), params.Name, params.Slug, params.Description)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.Conflict("category.update", "Category slug already exists")
		}
		return nil, domain.Internal(err, "category.update", "failed to update category")
	}
	return category, nil
}

// Delete removes a category.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, pgUUID(id))
	if err != nil {
		return domain.Internal(err, "category.delete", "failed to delete category")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
