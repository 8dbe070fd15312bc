package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockCartService implements domain.CartService for testing
type mockCartService struct {
	getCartFunc    func(ctx context.Context, userID uuid.UUID) (*domain.CartView, error)
	addLineFunc    func(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*domain.CartView, error)
	updateLineFunc func(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*domain.CartView, error)
	removeLineFunc func(ctx context.Context, userID, productID uuid.UUID) (*domain.CartView, error)
	clearCartFunc  func(ctx context.Context, userID uuid.UUID) (*domain.CartView, error)
}

func (m *mockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.CartView, error) {
	if m.getCartFunc != nil {
		return m.getCartFunc(ctx, userID)
	}
	return &domain.CartView{UserID: userID}, nil
}

func (m *mockCartService) AddLine(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*domain.CartView, error) {
	if m.addLineFunc != nil {
		return m.addLineFunc(ctx, userID, productID, quantity)
	}
	return &domain.CartView{UserID: userID}, nil
}

func (m *mockCartService) UpdateLine(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*domain.CartView, error) {
	if m.updateLineFunc != nil {
		return m.updateLineFunc(ctx, userID, productID, quantity)
	}
	return &domain.CartView{UserID: userID}, nil
}

func (m *mockCartService) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*domain.CartView, error) {
	if m.removeLineFunc != nil {
		return m.removeLineFunc(ctx, userID, productID)
	}
	return &domain.CartView{UserID: userID}, nil
}

func (m *mockCartService) ClearCart(ctx context.Context, userID uuid.UUID) (*domain.CartView, error) {
	if m.clearCartFunc != nil {
		return m.clearCartFunc(ctx, userID)
	}
	return &domain.CartView{UserID: userID}, nil
}

// mockOrderService implements domain.OrderService for testing
type mockOrderService struct {
	createOrderFunc   func(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error)
	getOrderFunc      func(ctx context.Context, orderID, userID uuid.UUID, admin bool) (*domain.Order, error)
	listOrdersFunc    func(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Order, int64, error)
	listAllOrdersFunc func(ctx context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error)
	updateStatusFunc  func(ctx context.Context, orderID uuid.UUID, params domain.UpdateOrderStatusParams) (*domain.Order, error)
	settlePaymentFunc func(ctx context.Context, paymentIntentID string, status domain.PaymentStatus) (*domain.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	if m.createOrderFunc != nil {
		return m.createOrderFunc(ctx, params)
	}
	return &domain.Order{}, nil
}

func (m *mockOrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID, admin bool) (*domain.Order, error) {
	if m.getOrderFunc != nil {
		return m.getOrderFunc(ctx, orderID, userID, admin)
	}
	return &domain.Order{}, nil
}

func (m *mockOrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Order, int64, error) {
	if m.listOrdersFunc != nil {
		return m.listOrdersFunc(ctx, userID, page, limit)
	}
	return nil, 0, nil
}

func (m *mockOrderService) ListAllOrders(ctx context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error) {
	if m.listAllOrdersFunc != nil {
		return m.listAllOrdersFunc(ctx, status, page, limit)
	}
	return nil, 0, nil
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, params domain.UpdateOrderStatusParams) (*domain.Order, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, orderID, params)
	}
	return &domain.Order{}, nil
}

func (m *mockOrderService) SettlePayment(ctx context.Context, paymentIntentID string, status domain.PaymentStatus) (*domain.Order, error) {
	if m.settlePaymentFunc != nil {
		return m.settlePaymentFunc(ctx, paymentIntentID, status)
	}
	return &domain.Order{}, nil
}

// newRequest builds a request carrying the given identity, mirroring what the
// auth middleware injects.
func newRequest(t *testing.T, method, target, body string, identity *domain.Identity) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if identity != nil {
		ctx := context.WithValue(req.Context(), middleware.IdentityContextKey, identity)
		req = req.WithContext(ctx)
	}
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}
