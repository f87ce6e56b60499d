package suggest

import (
	"context"
	"net/http"

	"lmia/compare-service/internal/httpx"
)

// SavedJobsProvider loads a user's saved jobs. Implemented by jobs.Service.
type SavedJobsProvider interface {
	SavedJobs(ctx context.Context, userID string) ([]SavedJob, error)
}

// Handler serves GET /comparisons/suggestions.
type Handler struct {
	provider SavedJobsProvider
}

// NewHandler returns a configured Handler.
func NewHandler(provider SavedJobsProvider) *Handler {
	return &Handler{provider: provider}
}

// RegisterRoutes mounts the suggestion route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/comparisons/suggestions", h.handleSuggestions)
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	saved, err := h.provider.SavedJobs(r.Context(), userID)
	if err != nil {
		httpx.Error(w, "failed to load saved jobs", http.StatusInternalServerError)
		return
	}

	suggestions := Suggestions(saved)
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	httpx.JSON(w, http.StatusOK, suggestions)
}
