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

// ProductStore implements domain.ProductStore using PostgreSQL.
type ProductStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that ProductStore implements domain.ProductStore.
var _ domain.ProductStore = (*ProductStore)(nil)

// NewProductStore creates a new PostgreSQL-backed product store.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `id, title, description, price_value, currency, images, category,
	dim_width, dim_height, dim_depth, dim_unit, material, year,
	artist_id, artist_name, is_available, stock, featured, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p         domain.Product
		id        pgtype.UUID
		artistID  pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &p.Title, &p.Description, &p.PriceValue, &p.Currency, &p.Images, &p.Category,
		&p.Dimensions.Width, &p.Dimensions.Height, &p.Dimensions.Depth, &p.Dimensions.Unit,
		&p.Material, &p.Year,
		&artistID, &p.ArtistName, &p.IsAvailable, &p.Stock, &p.Featured, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ID = fromPGUUID(id)
	p.ArtistID = fromPGUUID(artistID)
	p.CreatedAt = fromPGTime(createdAt)
	p.UpdatedAt = fromPGTime(updatedAt)
	return &p, nil
}

// Get retrieves a product by ID.
func (s *ProductStore) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, pgUUID(id))

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get", "failed to get product")
	}
	return p, nil
}

// ListAvailable returns available products, newest first.
func (s *ProductStore) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_available = true ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.Internal(err, "product.list", "failed to list products")
	}
	defer rows.Close()

	return collectProducts(rows, "product.list")
}

// List returns all products with pagination, newest first.
func (s *ProductStore) List(ctx context.Context, page, limit int) ([]domain.Product, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, "product.list_all", "failed to count products")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, domain.Internal(err, "product.list_all", "failed to list products")
	}
	defer rows.Close()

	products, err := collectProducts(rows, "product.list_all")
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func collectProducts(rows pgx.Rows, op string) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read products")
	}
	return products, nil
}

// Create inserts a new product with the artist name denormalized at write time.
func (s *ProductStore) Create(ctx context.Context, params domain.CreateProductParams, artistName string) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (
			title, description, price_value, currency, images, category,
			dim_width, dim_height, dim_depth, dim_unit, material, year,
			artist_id, artist_name, is_available, stock, featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+productColumns,
		params.Title, params.Description, params.PriceValue, params.Currency,
		params.Images, params.Category,
		params.Dimensions.Width, params.Dimensions.Height, params.Dimensions.Depth, params.Dimensions.Unit,
		params.Material, params.Year,
		pgUUID(params.ArtistID), artistName, params.IsAvailable, params.Stock, params.Featured,
	)

	p, err := scanProduct(row)
	if err != nil {
		return nil, domain.Internal(err, "product.create", "failed to create product")
	}
	return p, nil
}

// Update applies a partial update; nil fields keep their current value.
func (s *ProductStore) Update(ctx context.Context, id uuid.UUID, params domain.UpdateProductParams) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE products SET
			title        = COALESCE($2, title),
			description  = COALESCE($3, description),
			price_value  = COALESCE($4, price_value),
			images       = COALESCE($5, images),
			category     = COALESCE($6, category),
			material     = COALESCE($7, material),
			is_available = COALESCE($8, is_available),
			stock        = COALESCE($9, stock),
			featured     = COALESCE($10, featured),
			updated_at   = now()
		WHERE id = $1
		RETURNING `+productColumns,
		pgUUID(id),
		params.Title, params.Description, params.PriceValue, params.Images,
		params.Category, params.Material, params.IsAvailable, params.Stock, params.Featured,
	)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.update", "failed to update product")
	}
	return p, nil
}

// Delete removes a product.
func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, pgUUID(id))
	if err != nil {
		return domain.Internal(err, "product.delete", "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
