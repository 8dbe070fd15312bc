package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/middleware"
)

// OrderHandler serves checkout and order endpoints.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           string                 `json:"notes"`
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respondError(w, r, h.logger, domain.ErrInvalidToken)
		return
	}

	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}

	items := make([]domain.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			respondInvalid(w, "Invalid product ID")
			return
		}
		items = append(items, domain.OrderItemRequest{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), domain.CreateOrderParams{
		UserID:          identity.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respond(w, http.StatusCreated, "Order created successfully", order)
}

// List handles GET /orders: the caller's own orders, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respondError(w, r, h.logger, domain.ErrInvalidToken)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	orders, total, err := h.orders.ListOrders(r.Context(), identity.UserID, page, limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondPage(w, "", orders, page, limit, total)
}

// Get handles GET /orders/{id}. Owners see their orders; admins see any.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respondError(w, r, h.logger, domain.ErrInvalidToken)
		return
	}

	orderID, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid order ID")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID, identity.UserID, identity.IsAdmin())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", order)
}

// AdminList handles GET /admin/orders with optional status filtering.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status == "all" {
		status = ""
	}

	orders, total, err := h.orders.ListAllOrders(r.Context(), status, page, limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondPage(w, "", orders, page, limit, total)
}

type updateStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
}

// UpdateStatus handles PUT /admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid order ID")
		return
	}

	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		respondInvalid(w, "Status is required")
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), orderID, domain.UpdateOrderStatusParams{
		Status:         domain.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Order status updated", order)
}
