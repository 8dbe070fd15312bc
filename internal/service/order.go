package service

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/billing"
	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/shipping"
	"github.com/vietart/artmarket/internal/telemetry"
)

// OrderService implements domain.OrderService. Order creation is two-phase:
// a read-only validation and pricing pass over live products, then a single
// transaction that decrements stock, allocates the order number and writes
// the order. Either everything commits or nothing does.
type OrderService struct {
	orders   domain.OrderStore
	carts    domain.CartStore
	products domain.ProductStore
	users    domain.UserStore
	shipping shipping.Calculator
	billing  billing.Provider
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics
}

var _ domain.OrderService = (*OrderService)(nil)

// NewOrderService creates a new order service.
func NewOrderService(
	orders domain.OrderStore,
	carts domain.CartStore,
	products domain.ProductStore,
	users domain.UserStore,
	shippingCalc shipping.Calculator,
	billingProvider billing.Provider,
	logger *slog.Logger,
	metrics *telemetry.BusinessMetrics,
) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		users:    users,
		shipping: shippingCalc,
		billing:  billingProvider,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// CreateOrder validates the requested items against live inventory, prices
// them from current product prices, commits the order atomically and clears
// the buyer's cart.
func (s *OrderService) CreateOrder(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	const op = "order.create"

	if len(params.Items) == 0 {
		s.metrics.OrdersRejected.WithLabelValues("empty").Inc()
		return nil, domain.ErrEmptyOrder
	}
	if !params.PaymentMethod.Valid() {
		return nil, domain.Errorf(domain.EINVALID, op, "Unknown payment method: %s", params.PaymentMethod)
	}
	if err := s.validate.Struct(params.ShippingAddress); err != nil {
		return nil, domain.Invalid(op, "Shipping address is incomplete")
	}

	// Phase 1: read-only validation and snapshot pricing. Orders are priced
	// from the live product price, not any cart line price.
	var subtotal int64
	lines := make([]domain.OrderLine, 0, len(params.Items))
	for _, item := range params.Items {
		if item.Quantity < 1 {
			return nil, domain.Invalid(op, "Item quantity must be at least 1")
		}

		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			// The caller ordered by id, so the failure names the id.
			if domain.IsCode(err, domain.ENOTFOUND) {
				return nil, domain.NotFound(op, "Product", item.ProductID.String())
			}
			return nil, err
		}
		if !product.IsAvailable {
			s.metrics.OrdersRejected.WithLabelValues("unavailable").Inc()
			return nil, domain.ProductUnavailable(op, product.Title)
		}
		if product.Stock < item.Quantity {
			s.metrics.OrdersRejected.WithLabelValues("insufficient_stock").Inc()
			return nil, domain.InsufficientStock(op, product.Title, product.Stock)
		}

		lineTotal := product.PriceValue * int64(item.Quantity)
		subtotal += lineTotal
		lines = append(lines, domain.OrderLine{
			ProductID:    product.ID,
			ProductTitle: product.Title,
			ProductImage: product.PrimaryImage(),
			ArtistName:   product.ArtistName,
			Quantity:     item.Quantity,
			Price:        product.PriceValue,
			TotalPrice:   lineTotal,
		})
	}

	shippingFee := s.shipping.Fee(subtotal)
	totalAmount := subtotal + shippingFee

	var paymentIntentID string
	if params.PaymentMethod == domain.PaymentStripe {
		user, err := s.users.GetByID(ctx, params.UserID)
		if err != nil {
			return nil, err
		}
		intent, err := s.billing.CreatePaymentIntent(ctx, billing.CreatePaymentIntentParams{
			Amount:        totalAmount,
			Currency:      "vnd",
			CustomerEmail: user.Email,
			Description:   "Art marketplace order",
			Metadata:      map[string]string{"user_id": params.UserID.String()},
		})
		if err != nil {
			s.metrics.OrdersRejected.WithLabelValues("payment").Inc()
			return nil, domain.Internal(err, op, "failed to create payment intent")
		}
		paymentIntentID = intent.ID
	}

	// Phase 2: one transaction for stock decrements, number allocation and
	// the order insert.
	order, err := s.orders.PlaceOrder(ctx, domain.PlaceOrderParams{
		UserID:          params.UserID,
		Items:           lines,
		ShippingAddress: params.ShippingAddress,
		PaymentMethod:   params.PaymentMethod,
		Subtotal:        subtotal,
		ShippingFee:     shippingFee,
		TotalAmount:     totalAmount,
		Currency:        "VND",
		Notes:           params.Notes,
		PaymentIntentID: paymentIntentID,
	})
	if err != nil {
		if paymentIntentID != "" {
			if cancelErr := s.billing.CancelPaymentIntent(ctx, paymentIntentID); cancelErr != nil {
				s.logger.Error("failed to cancel payment intent after aborted order",
					"payment_intent_id", paymentIntentID,
					"error", cancelErr)
			}
		}
		if domain.IsCode(err, domain.EINVALID) {
			s.metrics.OrdersRejected.WithLabelValues("insufficient_stock").Inc()
		}
		return nil, err
	}

	// Clearing the cart is best-effort: the order already committed and is
	// never rolled back over a cart failure.
	if _, err := s.carts.Clear(ctx, params.UserID); err != nil {
		s.logger.Error("failed to clear cart after order",
			"user_id", params.UserID,
			"order_number", order.OrderNumber,
			"error", err)
	} else {
		s.metrics.CartCleared.WithLabelValues("purchase").Inc()
	}

	method := string(order.PaymentMethod)
	s.metrics.OrdersCreated.WithLabelValues(method).Inc()
	s.metrics.OrderValue.WithLabelValues(method).Observe(float64(order.TotalAmount))
	s.metrics.OrderItemCount.WithLabelValues(method).Observe(float64(len(order.Items)))
	s.logger.Info("order created",
		"order_number", order.OrderNumber,
		"user_id", order.UserID,
		"items", len(order.Items),
		"total", order.TotalAmount,
		"payment_method", method)

	return order, nil
}

// GetOrder returns an order scoped to its owner. Admins may read any order;
// other callers get not-found for orders they do not own, so order IDs leak
// nothing.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID, admin bool) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Order, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.orders.List(ctx, domain.OrderListParams{
		UserID: &userID,
		Page:   page,
		Limit:  limit,
	})
}

// ListAllOrders returns orders across all users, optionally filtered by status.
func (s *OrderService) ListAllOrders(ctx context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.orders.List(ctx, domain.OrderListParams{
		Status: status,
		Page:   page,
		Limit:  limit,
	})
}

// UpdateOrderStatus moves an order along the fulfillment progression,
// rejecting transitions the state machine forbids.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, params domain.UpdateOrderStatusParams) (*domain.Order, error) {
	const op = "order.update_status"

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.OrderStatus, params.Status) {
		return nil, domain.Errorf(domain.EINVALID, op,
			"Cannot change order status from %s to %s", order.OrderStatus, params.Status)
	}

	// Cancelling a card order unwinds the payment before the order moves:
	// paid intents are refunded, pending intents are cancelled at the gateway.
	if params.Status == domain.OrderCancelled && order.PaymentIntentID != "" {
		switch order.PaymentStatus {
		case domain.PaymentPaid:
			if _, err := s.billing.RefundPayment(ctx, order.PaymentIntentID, 0); err != nil {
				return nil, domain.Internal(err, op, "failed to refund payment")
			}
			if _, err := s.orders.SetPaymentStatusByIntent(ctx, order.PaymentIntentID, domain.PaymentRefunded); err != nil {
				return nil, err
			}
		case domain.PaymentPending:
			if err := s.billing.CancelPaymentIntent(ctx, order.PaymentIntentID); err != nil {
				s.logger.Error("failed to cancel payment intent for cancelled order",
					"order_number", order.OrderNumber,
					"payment_intent_id", order.PaymentIntentID,
					"error", err)
			}
		}
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, params)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderStatusChanges.WithLabelValues(string(params.Status)).Inc()
	s.logger.Info("order status updated",
		"order_number", updated.OrderNumber,
		"from", order.OrderStatus,
		"to", updated.OrderStatus)
	return updated, nil
}

// SettlePayment records the payment outcome reported by the gateway webhook
// for the order referencing the given payment intent.
func (s *OrderService) SettlePayment(ctx context.Context, paymentIntentID string, status domain.PaymentStatus) (*domain.Order, error) {
	order, err := s.orders.SetPaymentStatusByIntent(ctx, paymentIntentID, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment settled",
		"order_number", order.OrderNumber,
		"payment_intent_id", paymentIntentID,
		"payment_status", status)
	return order, nil
}

// normalizePage clamps pagination parameters to sane bounds.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// Pages returns the number of pages for a total at the given limit.
func Pages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
