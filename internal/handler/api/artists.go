package api

import (
	"log/slog"
	"net/http"

	"github.com/vietart/artmarket/internal/domain"
)

// ArtistHandler serves the public artist pages and admin artist management.
type ArtistHandler struct {
	artists domain.ArtistStore
	logger  *slog.Logger
}

// NewArtistHandler creates a new artist handler.
func NewArtistHandler(artists domain.ArtistStore, logger *slog.Logger) *ArtistHandler {
	return &ArtistHandler{artists: artists, logger: logger}
}

// List handles GET /artists.
func (h *ArtistHandler) List(w http.ResponseWriter, r *http.Request) {
	artists, err := h.artists.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", artists)
}

// Get handles GET /artists/{id}.
func (h *ArtistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid artist ID")
		return
	}

	artist, err := h.artists.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", artist)
}

type artistRequest struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	Featured bool   `json:"featured"`
}

// Create handles POST /admin/artists.
func (h *ArtistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req artistRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondInvalid(w, "Artist name is required")
		return
	}

	artist, err := h.artists.Create(r.Context(), domain.CreateArtistParams{
		Name:     req.Name,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Featured: req.Featured,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "Artist created", artist)
}

type updateArtistRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Featured *bool   `json:"featured"`
}

// Update handles PUT /admin/artists/{id}. Renames propagate to the artist's
// products but never to existing order line snapshots.
func (h *ArtistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid artist ID")
		return
	}

	var req updateArtistRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}

	artist, err := h.artists.Update(r.Context(), id, domain.UpdateArtistParams{
		Name:     req.Name,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Featured: req.Featured,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Artist updated", artist)
}

// Delete handles DELETE /admin/artists/{id}.
func (h *ArtistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondInvalid(w, "Invalid artist ID")
		return
	}

	if err := h.artists.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "Artist deleted", nil)
}
