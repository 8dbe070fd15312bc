package api

import (
	"log/slog"
	"net/http"

	"github.com/vietart/artmarket/internal/domain"
)

// UserHandler serves the admin account endpoints.
type UserHandler struct {
	users  domain.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users domain.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// AdminList handles GET /admin/users: all accounts, paginated.
func (h *UserHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	users, total, err := h.users.ListUsers(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondPage(w, "", users, page, limit, total)
}
