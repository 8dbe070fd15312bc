package api

import (
	"log/slog"
	"net/http"

	"github.com/vietart/artmarket/internal/domain"
)

// CategoryHandler serves category browsing and admin category management.
type CategoryHandler struct {
	categories domain.CategoryStore
	logger     *slog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories domain.CategoryStore, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", categories)
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid category ID")
		return
	}

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", category)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Create handles POST /admin/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}
	if req.Name == "" || req.Slug == "" {
		respondInvalid(w, "Name and slug are required")
		return
	}

	category, err := h.categories.Create(r.Context(), domain.CreateCategoryParams{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "Category created", category)
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

// Update handles PUT /admin/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid category ID")
		return
	}

	var req updateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}

	category, err := h.categories.Update(r.Context(), id, domain.UpdateCategoryParams{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Category updated", category)
}

// Delete handles DELETE /admin/categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid category ID")
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Category deleted", nil)
}
