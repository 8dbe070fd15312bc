package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/middleware"
)

// CartHandler serves the authenticated cart endpoints.
type CartHandler struct {
	carts  domain.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts domain.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respondError(w, r, h.logger, domain.ErrInvalidToken)
		return uuid.Nil, false
	}
	return identity.UserID, true
}

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", cart)
}

type cartLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

// Add handles POST /cart/add.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req cartLineRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		respondInvalid(w, "Invalid product ID")
		return
	}

	cart, err := h.carts.AddLine(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Item added to cart", cart)
}

// Update handles PUT /cart/update.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req cartLineRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		respondInvalid(w, "Invalid product ID")
		return
	}

	cart, err := h.carts.UpdateLine(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Cart updated", cart)
}

// Remove handles DELETE /cart/remove/{productId}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	productID, ok := pathUUID(r, "productId")
	if !ok {
		respondInvalid(w, "Invalid product ID")
		return
	}

	cart, err := h.carts.RemoveLine(r.Context(), userID, productID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Item removed from cart", cart)
}

// Clear handles DELETE /cart/clear.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.ClearCart(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Cart cleared", cart)
}
