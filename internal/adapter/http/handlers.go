package http

import (
	"net/http"

	"github.com/docreview/docreview/internal/adapter/ws"
	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/service"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	reviews *service.ReviewService
	hub     *ws.Hub
}

// NewHandlers creates the handler set.
func NewHandlers(reviews *service.ReviewService, hub *ws.Hub) *Handlers {
	return &Handlers{reviews: reviews, hub: hub}
}

// CreateReview accepts a document and starts the review pipeline.
// Responds 202: the work happens asynchronously and the caller polls.
func (h *Handlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[review.CreateRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.reviews.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "review task not created")
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// GetReviewStatus reports the task lifecycle state.
func (h *Handlers) GetReviewStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.reviews.GetStatus(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "review task not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetReviewResult returns the terminal result of a completed task.
func (h *Handlers) GetReviewResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.GetResult(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "review result not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetReviewReport renders the report. ?format=markdown|json, default markdown.
func (h *Handlers) GetReviewReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "markdown"
	}

	data, err := h.reviews.GetReport(r.Context(), urlParam(r, "id"), format)
	if err != nil {
		writeDomainError(w, err, "review report not found")
		return
	}

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"connections": h.hub.ConnectionCount(),
	})
}
