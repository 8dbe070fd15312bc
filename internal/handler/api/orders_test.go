package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietart/artmarket/internal/domain"
)

func orderBody(productID uuid.UUID) string {
	return fmt.Sprintf(`{
		"items": [{"productId": %q, "quantity": 2}],
		"shippingAddress": {
			"fullName": "Nguyen Van An",
			"phone": "0901234567",
			"street": "12 Trang Tien",
			"ward": "Trang Tien",
			"district": "Hoan Kiem",
			"city": "Hanoi"
		},
		"paymentMethod": "cod"
	}`, productID)
}

func TestOrderCreateReturns201(t *testing.T) {
	identity := buyerIdentity()
	productID := uuid.New()

	svc := &mockOrderService{
		createOrderFunc: func(_ context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
			assert.Equal(t, identity.UserID, params.UserID)
			require.Len(t, params.Items, 1)
			assert.Equal(t, productID, params.Items[0].ProductID)
			assert.Equal(t, int32(2), params.Items[0].Quantity)
			assert.Equal(t, domain.PaymentCOD, params.PaymentMethod)
			assert.Equal(t, "Hanoi", params.ShippingAddress.City)
			return &domain.Order{
				ID:          uuid.New(),
				OrderNumber: "ART000001",
				UserID:      params.UserID,
				OrderStatus: domain.OrderPending,
			}, nil
		},
	}
	h := NewOrderHandler(svc, testLogger())

	req := newRequest(t, http.MethodPost, "/orders", orderBody(productID), identity)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "Order created successfully", env["message"])
	data := env["data"].(map[string]any)
	assert.Equal(t, "ART000001", data["orderNumber"])
}

func TestOrderCreateInsufficientStock(t *testing.T) {
	svc := &mockOrderService{
		createOrderFunc: func(context.Context, domain.CreateOrderParams) (*domain.Order, error) {
			return nil, domain.InsufficientStock("order.create", "Lacquer Lotus", 1)
		},
	}
	h := NewOrderHandler(svc, testLogger())

	req := newRequest(t, http.MethodPost, "/orders", orderBody(uuid.New()), buyerIdentity())
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["message"], "Lacquer Lotus")
}

func TestOrderCreateRejectsMalformedBody(t *testing.T) {
	h := NewOrderHandler(&mockOrderService{}, testLogger())

	req := newRequest(t, http.MethodPost, "/orders", `{"items": [`, buyerIdentity())
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderGetPassesAdminFlag(t *testing.T) {
	admin := &domain.Identity{UserID: uuid.New(), Role: domain.RoleAdmin}
	orderID := uuid.New()

	svc := &mockOrderService{
		getOrderFunc: func(_ context.Context, oid, userID uuid.UUID, isAdmin bool) (*domain.Order, error) {
			assert.Equal(t, orderID, oid)
			assert.Equal(t, admin.UserID, userID)
			assert.True(t, isAdmin)
			return &domain.Order{ID: oid, OrderNumber: "ART000042"}, nil
		},
	}
	h := NewOrderHandler(svc, testLogger())

	req := newRequest(t, http.MethodGet, "/orders/"+orderID.String(), "", admin)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderGetNotFoundForStranger(t *testing.T) {
	svc := &mockOrderService{
		getOrderFunc: func(context.Context, uuid.UUID, uuid.UUID, bool) (*domain.Order, error) {
			return nil, domain.ErrOrderNotFound
		},
	}
	h := NewOrderHandler(svc, testLogger())

	orderID := uuid.New()
	req := newRequest(t, http.MethodGet, "/orders/"+orderID.String(), "", buyerIdentity())
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderListPagination(t *testing.T) {
	identity := buyerIdentity()
	svc := &mockOrderService{
		listOrdersFunc: func(_ context.Context, userID uuid.UUID, page, limit int) ([]domain.Order, int64, error) {
			assert.Equal(t, identity.UserID, userID)
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			return []domain.Order{{OrderNumber: "ART000007"}}, 11, nil
		},
	}
	h := NewOrderHandler(svc, testLogger())

	req := newRequest(t, http.MethodGet, "/orders?page=2&limit=5", "", identity)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	pagination := env["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(11), pagination["total"])
	assert.Equal(t, float64(3), pagination["pages"])
}

func TestOrderAdminListStatusFilter(t *testing.T) {
	svc := &mockOrderService{
		listAllOrdersFunc: func(_ context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error) {
			assert.Equal(t, domain.OrderShipped, status)
			return nil, 0, nil
		},
	}
	h := NewOrderHandler(svc, testLogger())

	req := newRequest(t, http.MethodGet, "/admin/orders?status=shipped", "", nil)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderAdminListAllMeansUnfiltered(t *testing.T) {
	svc := &mockOrderService{
		listAllOrdersFunc: func(_ context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error) {
			assert.Empty(t, status)
			return nil, 0, nil
		},
	}
	h := NewOrderHandler(svc, testLogger())

	req := newRequest(t, http.MethodGet, "/admin/orders?status=all", "", nil)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	svc := &mockOrderService{
		updateStatusFunc: func(_ context.Context, oid uuid.UUID, params domain.UpdateOrderStatusParams) (*domain.Order, error) {
			assert.Equal(t, orderID, oid)
			assert.Equal(t, domain.OrderShipped, params.Status)
			assert.Equal(t, "VN123456789", params.TrackingNumber)
			return &domain.Order{ID: oid, OrderStatus: params.Status}, nil
		},
	}
	h := NewOrderHandler(svc, testLogger())

	body := `{"status": "shipped", "trackingNumber": "VN123456789"}`
	req := newRequest(t, http.MethodPut, "/admin/orders/"+orderID.String()+"/status", body, nil)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderUpdateStatusRejectsForbiddenTransition(t *testing.T) {
	orderID := uuid.New()
	svc := &mockOrderService{
		updateStatusFunc: func(context.Context, uuid.UUID, domain.UpdateOrderStatusParams) (*domain.Order, error) {
			return nil, domain.Invalid("order.update_status", "Cannot change order status from delivered to pending")
		},
	}
	h := NewOrderHandler(svc, testLogger())

	req := newRequest(t, http.MethodPut, "/admin/orders/"+orderID.String()+"/status", `{"status": "pending"}`, nil)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderUpdateStatusRequiresStatus(t *testing.T) {
	h := NewOrderHandler(&mockOrderService{}, testLogger())

	orderID := uuid.New()
	req := newRequest(t, http.MethodPut, "/admin/orders/"+orderID.String()+"/status", `{}`, nil)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
