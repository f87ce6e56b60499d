// HTTP handlers for the dataset, NOC, and location lookups.
//
// Routes:
//
//	GET /jobs                 → paged dataset query
//	GET /noc/{code}           → NOC profile
//	GET /locations/provinces  → all provinces
//	GET /locations/cities     → cities for ?province=… (repeatable)
package jobs

import (
	"net/http"
	"strconv"
	"strings"

	"lmia/compare-service/internal/httpx"
)

// Handler holds shared dependencies.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all lookup routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs", h.handleQuery)
	mux.HandleFunc("/noc/", h.handleNOC)
	mux.HandleFunc("/locations/provinces", h.handleProvinces)
	mux.HandleFunc("/locations/cities", h.handleCities)
}

// handleQuery handles GET /jobs.
//
// Query params: dataset (required), q, field, limit, offset, and any
// queryable column as filter.<column>=value.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	req := QueryRequest{
		Dataset: q.Get("dataset"),
		Query:   q.Get("q"),
		Field:   q.Get("field"),
		Filters: make(map[string]string),
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}
	for key, vals := range q {
		if col, ok := strings.CutPrefix(key, "filter."); ok && len(vals) > 0 {
			req.Filters[col] = vals[0]
		}
	}

	result, err := h.svc.Query(r.Context(), req)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleNOC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/noc/")
	if code == "" || strings.Contains(code, "/") {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}

	profile, err := h.svc.ProfileByNOC(r.Context(), code)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) handleProvinces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	provinces, err := h.svc.Provinces(r.Context())
	if err != nil {
		httpx.Error(w, "failed to load provinces", http.StatusInternalServerError)
		return
	}
	if provinces == nil {
		provinces = []string{}
	}
	httpx.JSON(w, http.StatusOK, provinces)
}

func (h *Handler) handleCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cities, err := h.svc.CitiesForProvinces(r.Context(), r.URL.Query()["province"])
	if err != nil {
		httpx.Error(w, "failed to load cities", http.StatusInternalServerError)
		return
	}
	if cities == nil {
		cities = []CityProvince{}
	}
	httpx.JSON(w, http.StatusOK, cities)
}
