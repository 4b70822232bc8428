/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for storefront frontends

ROUTE GROUPS:
  /api/carts/{key}/*   Cart, item, and condition operations

SECURITY NOTE:
  No authentication middleware. The session key in the URL is the only
  cart selector; put this service behind an authenticating proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api/carts/{key}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Get("/totals", h.GetTotals)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.AddItems)
			r.Delete("/", h.ClearItems)
			r.Get("/{id}", h.GetItem)
			r.Put("/{id}", h.UpdateItem)
			r.Delete("/{id}", h.RemoveItem)

			r.Route("/{id}/conditions", func(r chi.Router) {
				r.Post("/", h.AddItemCondition)
				r.Delete("/", h.ClearItemConditions)
				r.Delete("/{name}", h.RemoveItemCondition)
			})
		})

		r.Route("/conditions", func(r chi.Router) {
			r.Get("/", h.ListConditions)
			r.Post("/", h.AddCondition)
			r.Delete("/", h.ClearConditions)
			r.Delete("/{name}", h.RemoveCondition)
		})
	})

	return r
}
