package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/telemetry"
)

// ProductService implements domain.ProductService: catalog reads plus the
// admin/artist write operations.
type ProductService struct {
	products domain.ProductStore
	artists  domain.ArtistStore
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics
}

var _ domain.ProductService = (*ProductService)(nil)

// NewProductService creates a new product service.
func NewProductService(products domain.ProductStore, artists domain.ArtistStore, logger *slog.Logger, metrics *telemetry.BusinessMetrics) *ProductService {
	return &ProductService{
		products: products,
		artists:  artists,
		logger:   logger,
		metrics:  metrics,
	}
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.ProductViews.WithLabelValues(id.String()).Inc()
	return product, nil
}

// ListProducts returns available products for the public catalog.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListAvailable(ctx)
}

// ListAllProducts returns all products, including unavailable ones, for admin.
func (s *ProductService) ListAllProducts(ctx context.Context, page, limit int) ([]domain.Product, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.products.List(ctx, page, limit)
}

// CreateProduct validates the referenced artist and inserts the product with
// the artist name denormalized at write time.
func (s *ProductService) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "product.create"

	if params.Title == "" {
		return nil, domain.Invalid(op, "Title is required")
	}
	if params.PriceValue <= 0 {
		return nil, domain.Invalid(op, "Price must be positive")
	}
	if params.Stock < 0 {
		return nil, domain.Invalid(op, "Stock cannot be negative")
	}
	if params.Currency == "" {
		params.Currency = "VND"
	}

	artist, err := s.artists.Get(ctx, params.ArtistID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.Create(ctx, params, artist.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", "product_id", product.ID, "title", product.Title)
	return product, nil
}

// UpdateProduct applies a partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, params domain.UpdateProductParams) (*domain.Product, error) {
	const op = "product.update"

	if params.PriceValue != nil && *params.PriceValue <= 0 {
		return nil, domain.Invalid(op, "Price must be positive")
	}
	if params.Stock != nil && *params.Stock < 0 {
		return nil, domain.Invalid(op, "Stock cannot be negative")
	}

	product, err := s.products.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated", "product_id", product.ID)
	return product, nil
}

// DeleteProduct removes a product. Existing cart lines referencing it stay
// in place and resolve to a missing product on the next cart read; order
// snapshots are unaffected.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", "product_id", id)
	return nil
}
