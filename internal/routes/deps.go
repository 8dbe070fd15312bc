package routes

import (
	"net/http"

	"github.com/vietart/artmarket/internal/handler/api"
	"github.com/vietart/artmarket/internal/middleware"
)

// APIDeps contains the handlers and route middleware for the JSON API.
type APIDeps struct {
	// Auth establishes caller identity for protected route groups.
	Auth *middleware.Authenticator

	// AuthLimiter throttles credential endpoints harder than the rest of
	// the API.
	AuthLimiter func(http.Handler) http.Handler

	AuthHandler     *api.AuthHandler
	ProductHandler  *api.ProductHandler
	ArtistHandler   *api.ArtistHandler
	CategoryHandler *api.CategoryHandler
	CartHandler     *api.CartHandler
	OrderHandler    *api.OrderHandler
	UserHandler     *api.UserHandler
	WebhookHandler  *api.WebhookHandler
	HealthHandler   *api.HealthHandler

	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler
}
