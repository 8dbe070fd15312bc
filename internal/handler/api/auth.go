package api

import (
	"log/slog"
	"net/http"

	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/middleware"
)

// AuthHandler serves registration, login and the token lifecycle.
type AuthHandler struct {
	users  domain.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users domain.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}

	result, err := h.users.Register(r.Context(), domain.CreateUserParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respond(w, http.StatusCreated, "Registration successful", result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalid(w, "Invalid request body")
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respond(w, http.StatusOK, "Login successful", result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
		respondInvalid(w, "Refresh token is required")
		return
	}

	access, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respond(w, http.StatusOK, "Token refreshed", map[string]string{"accessToken": access})
}

// Logout handles POST /auth/logout. Requires authentication.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respondError(w, r, h.logger, domain.ErrInvalidToken)
		return
	}

	var req refreshRequest
	if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
		respondInvalid(w, "Refresh token is required")
		return
	}

	if err := h.users.Logout(r.Context(), identity.UserID, req.RefreshToken); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respond(w, http.StatusOK, "Logged out", nil)
}

// Me handles GET /auth/me. Requires authentication.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respondError(w, r, h.logger, domain.ErrInvalidToken)
		return
	}

	user, err := h.users.GetUser(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respond(w, http.StatusOK, "", user)
}
