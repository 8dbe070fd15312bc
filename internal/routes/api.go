// Package routes maps the HTTP surface onto handlers and route middleware.
package routes

import (
	"github.com/vietart/artmarket/internal/router"
)

// RegisterAPIRoutes registers every route of the JSON API. Public reads go
// unauthenticated; credential endpoints sit behind the strict rate limiter;
// everything under /cart and /orders requires a verified identity.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Ops
	r.Get("/health", deps.HealthHandler.Check)
	r.Handle("GET", "/metrics", deps.MetricsHandler)

	// Auth. Register/login/refresh are brute-force targets.
	creds := r.Group(deps.AuthLimiter)
	creds.Post("/auth/register", deps.AuthHandler.Register)
	creds.Post("/auth/login", deps.AuthHandler.Login)
	creds.Post("/auth/refresh", deps.AuthHandler.Refresh)
	r.Post("/auth/logout", deps.AuthHandler.Logout, deps.Auth.RequireAuth)
	r.Get("/auth/me", deps.AuthHandler.Me, deps.Auth.RequireAuth)

	// Public catalog reads
	r.Get("/products", deps.ProductHandler.List)
	r.Get("/products/{id}", deps.ProductHandler.Get)
	r.Get("/artists", deps.ArtistHandler.List)
	r.Get("/artists/{id}", deps.ArtistHandler.Get)
	r.Get("/categories", deps.CategoryHandler.List)
	r.Get("/categories/{id}", deps.CategoryHandler.Get)

	// Catalog writes: artists manage their own pieces, admins manage all.
	catalog := r.Group(deps.Auth.RequireArtistOrAdmin)
	catalog.Post("/products", deps.ProductHandler.Create)
	catalog.Put("/products/{id}", deps.ProductHandler.Update)
	catalog.Delete("/products/{id}", deps.ProductHandler.Delete)

	// Cart: always scoped to the authenticated caller.
	cart := r.Group(deps.Auth.RequireAuth)
	cart.Get("/cart", deps.CartHandler.Get)
	cart.Post("/cart/add", deps.CartHandler.Add)
	cart.Put("/cart/update", deps.CartHandler.Update)
	cart.Delete("/cart/remove/{productId}", deps.CartHandler.Remove)
	cart.Delete("/cart/clear", deps.CartHandler.Clear)

	// Orders
	orders := r.Group(deps.Auth.RequireAuth)
	orders.Post("/orders", deps.OrderHandler.Create)
	orders.Get("/orders", deps.OrderHandler.List)
	orders.Get("/orders/{id}", deps.OrderHandler.Get)

	// Admin
	admin := r.Group(deps.Auth.RequireAdmin)
	admin.Get("/admin/products", deps.ProductHandler.AdminList)
	admin.Post("/admin/artists", deps.ArtistHandler.Create)
	admin.Put("/admin/artists/{id}", deps.ArtistHandler.Update)
	admin.Delete("/admin/artists/{id}", deps.ArtistHandler.Delete)
	admin.Post("/admin/categories", deps.CategoryHandler.Create)
	admin.Put("/admin/categories/{id}", deps.CategoryHandler.Update)
	admin.Delete("/admin/categories/{id}", deps.CategoryHandler.Delete)
	admin.Get("/admin/orders", deps.OrderHandler.AdminList)
	admin.Put("/admin/orders/{id}/status", deps.OrderHandler.UpdateStatus)
	admin.Get("/admin/users", deps.UserHandler.AdminList)

	// Payment gateway callbacks authenticate by signature, not bearer token.
	r.Post("/webhooks/stripe", deps.WebhookHandler.Stripe)
}
