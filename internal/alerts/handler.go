// HTTP handlers for the alerts API.
//
// Routes:
//
//	GET    /alerts        → list the user's alerts
//	POST   /alerts        → create an alert from raw form criteria
//	DELETE /alerts/{id}   → delete an alert
package alerts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lmia/compare-service/internal/httpx"
)

// Handler holds shared dependencies.
type Handler struct {
	svc    *Service
	lookup TierLookup
}

// NewHandler returns a configured Handler. lookup resolves NOC codes sent
// with the creation form.
func NewHandler(svc *Service, lookup TierLookup) *Handler {
	return &Handler{svc: svc, lookup: lookup}
}

// RegisterRoutes mounts all alert routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/alerts", h.handleAlerts)
	mux.HandleFunc("/alerts/", h.handleAlertItem)
}

// createRequest carries the raw form inputs; the Builder normalises them.
type createRequest struct {
	Name        string   `json:"name"`
	JobTitle    string   `json:"jobTitle,omitempty"`
	JobTitles   []string `json:"jobTitles,omitempty"`
	NOCCode     string   `json:"nocCode,omitempty"`
	Tier        string   `json:"tier,omitempty"`
	Cities      []string `json:"cities,omitempty"`
	Provinces   []string `json:"provinces,omitempty"`
	RawLocation string   `json:"location,omitempty"`
	Frequency   string   `json:"frequency,omitempty"`
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		alerts, err := h.svc.List(r.Context(), userID)
		if err != nil {
			httpx.Error(w, "failed to load alerts", http.StatusInternalServerError)
			return
		}
		httpx.JSON(w, http.StatusOK, alerts)

	case http.MethodPost:
		h.createAlert(w, r, userID)

	default:
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createAlert(w http.ResponseWriter, r *http.Request, userID string) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	// The form submits a complete NOC code, so the tier lookup runs
	// synchronously here; the keystroke debounce belongs to interactive
	// builders, not to one-shot creation requests.
	b := NewBuilder(nil)
	if len(req.JobTitles) > 0 {
		b.SetJobTitles(req.JobTitles)
	} else if req.JobTitle != "" {
		b.SetJobTitle(req.JobTitle)
	}
	b.SetCities(req.Cities)
	b.SetProvinces(req.Provinces)
	b.SetRawLocation(req.RawLocation)

	if err := b.SetTier(req.Tier); err != nil {
		writeAlertError(w, err)
		return
	}
	if req.Frequency != "" {
		f, err := ParseFrequency(req.Frequency)
		if err != nil {
			httpx.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.SetFrequency(f)
	}

	c := b.Build()
	c.NOCCode = req.NOCCode
	if c.Tier == nil && req.Tier != "all" && len(req.NOCCode) >= minNOCLength && h.lookup != nil {
		tier, err := h.lookup(r.Context(), req.NOCCode)
		if err != nil {
			httpx.Error(w, "NOC lookup failed", http.StatusBadGateway)
			return
		}
		c.Tier = tier
	}

	created, err := h.svc.Create(r.Context(), userID, req.Name, c)
	if err != nil {
		writeAlertError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleAlertItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/alerts/")
	if id == "" || strings.Contains(id, "/") {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeAlertError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// writeAlertError maps domain errors to HTTP status codes.
func writeAlertError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.Error(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, err.Error(), http.StatusNotFound)
	default:
		httpx.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
