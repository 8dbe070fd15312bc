// Package service implements the marketplace business logic on top of the
// domain store interfaces.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/telemetry"
)

// CartService implements domain.CartService: stock-bounded cart mutations
// with price captured at add time.
type CartService struct {
	carts    domain.CartStore
	products domain.ProductStore
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics
}

var _ domain.CartService = (*CartService)(nil)

// NewCartService creates a new cart service.
func NewCartService(carts domain.CartStore, products domain.ProductStore, logger *slog.Logger, metrics *telemetry.BusinessMetrics) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
		metrics:  metrics,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart)
}

// AddLine merges quantity into the user's cart line for the product. The
// line price is captured from the live product on first add; subsequent adds
// keep the original committed price.
func (s *CartService) AddLine(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*domain.CartView, error) {
	const op = "cart.add_line"

	if quantity < 1 || quantity > domain.MaxLineQuantity {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, domain.ProductUnavailable(op, product.Title)
	}
	if product.Stock < quantity {
		return nil, domain.InsufficientStock(op, product.Title, product.Stock)
	}

	cart, err := s.carts.MergeLine(ctx, domain.MergeLineParams{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.PriceValue,
		Stock:     product.Stock,
		Title:     product.Title,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ProductAddToCart.WithLabelValues(productID.String()).Inc()
	s.metrics.CartUpdated.WithLabelValues("add").Inc()
	s.metrics.CartValue.WithLabelValues().Observe(float64(cart.TotalPrice))
	s.logger.Info("cart line added",
		"user_id", userID,
		"product_id", productID,
		"quantity", quantity,
		"cart_total", cart.TotalPrice)

	return s.buildView(ctx, cart)
}

// UpdateLine replaces a line's quantity. Quantity zero removes the line.
func (s *CartService) UpdateLine(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*domain.CartView, error) {
	const op = "cart.update_line"

	if quantity < 0 || quantity > domain.MaxLineQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveLine(ctx, userID, productID)
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, domain.InsufficientStock(op, product.Title, product.Stock)
	}

	cart, err := s.carts.SetLineQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, err
	}

	s.metrics.CartUpdated.WithLabelValues("update_quantity").Inc()
	return s.buildView(ctx, cart)
}

// RemoveLine deletes a line from the cart.
func (s *CartService) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*domain.CartView, error) {
	cart, err := s.carts.RemoveLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	s.metrics.CartUpdated.WithLabelValues("remove").Inc()
	return s.buildView(ctx, cart)
}

// ClearCart empties the cart. Clearing an empty or absent cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*domain.CartView, error) {
	cart, err := s.carts.Clear(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.metrics.CartUpdated.WithLabelValues("clear").Inc()
	s.metrics.CartCleared.WithLabelValues("manual").Inc()
	return s.buildView(ctx, cart)
}

// buildView resolves each line's product for display. A deleted product
// leaves the line visible with a nil product so the client can prompt
// removal; the committed price is never rewritten.
func (s *CartService) buildView(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	view := &domain.CartView{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      make([]domain.CartLineView, 0, len(cart.Items)),
		TotalItems: cart.TotalItems,
		TotalPrice: cart.TotalPrice,
		UpdatedAt:  cart.UpdatedAt,
	}

	for _, line := range cart.Items {
		lv := domain.CartLineView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			LineTotal: int64(line.Quantity) * line.Price,
			AddedAt:   line.AddedAt,
		}

		product, err := s.products.Get(ctx, line.ProductID)
		switch {
		case err == nil:
			lv.Product = &domain.CartLineProduct{
				ID:          product.ID,
				Title:       product.Title,
				Image:       product.PrimaryImage(),
				PriceValue:  product.PriceValue,
				ArtistName:  product.ArtistName,
				IsAvailable: product.IsAvailable,
				Stock:       product.Stock,
			}
		case domain.IsCode(err, domain.ENOTFOUND):
			// product deleted since the line was added; keep the line
		default:
			return nil, err
		}

		view.Items = append(view.Items, lv)
	}

	return view, nil
}
