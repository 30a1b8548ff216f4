// Package router wires handlers and middleware into the HTTP API.
package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the handlers served by the router.
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Admin    *handler.AdminHandler
	Health   http.HandlerFunc
}

// Options configures the router.
type Options struct {
	APIKey       string
	SecureCookie bool
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, sessions *session.Registry, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// RequestID -> Recovery -> Logging -> CORS
	r.Use(
		chimw.RequestID,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.CORS,
	)

	health := h.Health
	if health == nil {
		health = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status": "healthy"}`))
		}
	}
	r.Get("/health", health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Products.List)
		r.Get("/products/{id}", h.Products.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(sessions, opts.SecureCookie, logger))

			r.Get("/cart", h.Cart.Get)
			r.Post("/cart/items", h.Cart.AddItem)
			r.Patch("/cart/items/{productId}/{colorId}", h.Cart.UpdateItem)
			r.Delete("/cart/items/{productId}/{colorId}", h.Cart.RemoveItem)
			r.Put("/cart/open", h.Cart.SetOpen)

			r.Get("/checkout", h.Checkout.Begin)
			r.Post("/checkout", h.Checkout.Submit)
			r.Post("/checkout/confirm", h.Checkout.Confirm)
			r.Post("/checkout/cancel", h.Checkout.Cancel)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(opts.APIKey, logger))

			r.Get("/admin/orders", h.Admin.ListOrders)
		})
	})

	return r
}
