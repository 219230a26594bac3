package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"agregados/pkg/rowstore"
)

// GetRouter initialises a new http router and applies all routes.
func GetRouter(store rowstore.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	// The dashboard front-end runs on its own origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Confirm-Reset"},
		MaxAge:         300,
	}))
	return applyRoutes(r, NewHandler(store))
}

func applyRoutes(r chi.Router, h *Handler) chi.Router {
	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrder)
		r.Post("/orders/{id}/flags/{flag}", h.setFlag)
		r.Delete("/orders/{id}", h.deleteOrder)
		r.Post("/orders/{id}/delete/cancel", h.cancelDelete)
		r.Get("/reports", h.reports)
		r.Post("/reset", h.resetAll)
	})

	return r
}
