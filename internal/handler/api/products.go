package api

import (
	"log/slog"
	"net/http"

	"github.com/vietart/artmarket/internal/domain"
)

// ProductHandler serves the public catalog and the admin product endpoints.
type ProductHandler struct {
	products domain.ProductService
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products domain.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// List handles GET /products: available products only, newest first.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", products)
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid product ID")
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", product)
}

// AdminList handles GET /admin/products: all products, paginated.
func (h *ProductHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	products, total, err := h.products.ListAllProducts(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondPage(w, "", products, page, limit, total)
}

type productRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	PriceValue  int64             `json:"priceValue"`
	Currency    string            `json:"currency"`
	Images      []string          `json:"images"`
	Category    string            `json:"category"`
	Dimensions  domain.Dimensions `json:"dimensions"`
	Material    string            `json:"material"`
	Year        int32             `json:"year"`
	ArtistID    string            `json:"artistId"`
	IsAvailable *bool             `json:"isAvailable"`
	Stock       int32             `json:"stock"`
	Featured    bool              `json:"featured"`
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}

	artistID, ok := parseUUID(req.ArtistID)
	if !ok {
		respondInvalid(w, "Invalid artist ID")
		return
	}

	// New products default to available unless the request says otherwise.
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product, err := h.products.CreateProduct(r.Context(), domain.CreateProductParams{
		Title:       req.Title,
		Description: req.Description,
		PriceValue:  req.PriceValue,
		Currency:    req.Currency,
		Images:      req.Images,
		Category:    req.Category,
		Dimensions:  req.Dimensions,
		Material:    req.Material,
		Year:        req.Year,
		ArtistID:    artistID,
		IsAvailable: available,
		Stock:       req.Stock,
		Featured:    req.Featured,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "Product created", product)
}

type updateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	PriceValue  *int64   `json:"priceValue"`
	Images      []string `json:"images"`
	Category    *string  `json:"category"`
	Material    *string  `json:"material"`
	IsAvailable *bool    `json:"isAvailable"`
	Stock       *int32   `json:"stock"`
	Featured    *bool    `json:"featured"`
}

// Update handles PUT /products/{id}. Absent fields are left untouched.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid product ID")
		return
	}

	var req updateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id, domain.UpdateProductParams{
		Title:       req.Title,
		Description: req.Description,
		PriceValue:  req.PriceValue,
		Images:      req.Images,
		Category:    req.Category,
		Material:    req.Material,
		IsAvailable: req.IsAvailable,
		Stock:       req.Stock,
		Featured:    req.Featured,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Product updated", product)
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid product ID")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Product deleted", nil)
}
