package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)
	r.Get("/ws", h.hub.HandleWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		r.Post("/reviews", h.CreateReview)
		r.Get("/reviews/{id}/status", h.GetReviewStatus)
		r.Get("/reviews/{id}/result", h.GetReviewResult)
		r.Get("/reviews/{id}/report", h.GetReviewReport)
	})
}
