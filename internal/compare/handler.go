// HTTP handlers for the comparison API.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET    /comparisons/recent             → recent comparisons, newest first
//	POST   /comparisons/recent             → record a comparison
//	GET    /comparisons/saved              → saved comparisons
//	POST   /comparisons/saved              → save a comparison by name
//	DELETE /comparisons/saved/{id}         → delete a saved comparison
//	GET    /comparisons/queue              → comparison queue
//	POST   /comparisons/queue              → queue an employer
//	DELETE /comparisons/queue              → clear the queue
//	DELETE /comparisons/queue/{name}       → remove one employer
//	GET    /comparisons/selection          → current selection state
//	POST   /comparisons/selection/{action} → entity | type | threeway |
//	                                         autofill | run | reset
package compare

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"lmia/compare-service/internal/httpx"
)

// Handler holds shared dependencies.
type Handler struct {
	log      *Log
	sessions *Sessions
}

// NewHandler returns a configured Handler.
func NewHandler(log *Log, sessions *Sessions) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// RegisterRoutes mounts all comparison routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/comparisons/recent", h.handleRecent)
	mux.HandleFunc("/comparisons/saved", h.handleSaved)
	mux.HandleFunc("/comparisons/saved/", h.handleSavedItem)
	mux.HandleFunc("/comparisons/queue", h.handleQueue)
	mux.HandleFunc("/comparisons/queue/", h.handleQueueItem)
	mux.HandleFunc("/comparisons/selection", h.handleSelection)
	mux.HandleFunc("/comparisons/selection/", h.handleSelectionAction)
}

// ─── Recent comparisons ──────────────────────────────────────────────────────

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		recent, err := h.log.Recent(r.Context(), userID)
		if err != nil {
			httpx.Error(w, "failed to load recent comparisons", http.StatusInternalServerError)
			return
		}
		if recent == nil {
			recent = []RecentComparison{}
		}
		httpx.JSON(w, http.StatusOK, recent)

	case http.MethodPost:
		var body struct {
			Entity1 string `json:"entity1"`
			Entity2 string `json:"entity2"`
			Type    string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Entity1 == "" || body.Entity2 == "" {
			httpx.Error(w, "body must contain entity1, entity2 and type", http.StatusBadRequest)
			return
		}
		ctype, err := ParseComparisonType(body.Type)
		if err != nil {
			httpx.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.log.RecordComparison(r.Context(), userID, body.Entity1, body.Entity2, ctype); err != nil {
			httpx.Error(w, "failed to record comparison", http.StatusInternalServerError)
			return
		}
		httpx.JSON(w, http.StatusCreated, map[string]bool{"recorded": true})

	default:
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ─── Saved comparisons ───────────────────────────────────────────────────────

func (h *Handler) handleSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		saved, err := h.log.Saved(r.Context(), userID)
		if err != nil {
			httpx.Error(w, "failed to load saved comparisons", http.StatusInternalServerError)
			return
		}
		if saved == nil {
			saved = []SavedComparison{}
		}
		httpx.JSON(w, http.StatusOK, saved)

	case http.MethodPost:
		var body struct {
			Name  string `json:"name"`
			Type  string `json:"type"`
			Notes string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		entry, err := h.log.SaveComparison(r.Context(), userID, body.Name, body.Type, body.Notes)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, entry)

	default:
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSavedItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/comparisons/saved/")
	if id == "" || strings.Contains(id, "/") {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}

	if err := h.log.DeleteSaved(r.Context(), userID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ─── Comparison queue ────────────────────────────────────────────────────────

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		queue, err := h.log.Queue(r.Context(), userID)
		if err != nil {
			httpx.Error(w, "failed to load comparison queue", http.StatusInternalServerError)
			return
		}
		if queue == nil {
			queue = []string{}
		}
		httpx.JSON(w, http.StatusOK, queue)

	case http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if err := h.log.AddToQueue(r.Context(), userID, body.Name); err != nil {
			writeDomainError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, map[string]bool{"queued": true})

	case http.MethodDelete:
		if err := h.log.ClearQueue(r.Context(), userID); err != nil {
			httpx.Error(w, "failed to clear queue", http.StatusInternalServerError)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]bool{"cleared": true})

	default:
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	name, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/comparisons/queue/"))
	if err != nil || name == "" {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}

	if err := h.log.RemoveFromQueue(r.Context(), userID, name); err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"removed": true})
}

// ─── Selection state ─────────────────────────────────────────────────────────

// selectionState is the JSON snapshot returned after every selection call.
type selectionState struct {
	Type     ComparisonType `json:"type"`
	Entities [3]string      `json:"entities"`
	ThreeWay bool           `json:"threeWay"`
	Phase    Phase          `json:"phase"`
}

func snapshot(sel *Selection) selectionState {
	return selectionState{
		Type:     sel.Type(),
		Entities: [3]string{sel.Entity(1), sel.Entity(2), sel.Entity(3)},
		ThreeWay: sel.ThreeWay(),
		Phase:    sel.Phase(),
	}
}

func (h *Handler) handleSelection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var state selectionState
	_ = h.sessions.Do(userID, func(sel *Selection) error {
		state = snapshot(sel)
		return nil
	})
	httpx.JSON(w, http.StatusOK, state)
}

// handleSelectionAction handles POST /comparisons/selection/{action}
func (h *Handler) handleSelectionAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/comparisons/selection/")
	switch action {
	case "entity":
		h.setEntity(w, r, userID)
	case "type":
		h.setType(w, r, userID)
	case "threeway":
		h.toggleThreeWay(w, r, userID)
	case "autofill":
		h.autoFill(w, r, userID)
	case "run":
		h.runComparison(w, r, userID)
	case "reset":
		h.resetSelection(w, r, userID)
	default:
		httpx.Error(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

func (h *Handler) setEntity(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Slot  int    `json:"slot"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	h.withSelection(w, userID, func(sel *Selection) error {
		return sel.SetEntity(body.Slot, body.Value)
	})
}

func (h *Handler) setType(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	ctype, err := ParseComparisonType(body.Type)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.withSelection(w, userID, func(sel *Selection) error {
		sel.SetType(ctype)
		return nil
	})
}

func (h *Handler) toggleThreeWay(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	h.withSelection(w, userID, func(sel *Selection) error {
		sel.ToggleThreeWay(body.Enabled)
		return nil
	})
}

// autoFill moves one employer from the comparison queue into a slot. The
// queue entry is consumed only after the slot assignment succeeded.
func (h *Handler) autoFill(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		httpx.Error(w, "body must contain name", http.StatusBadRequest)
		return
	}

	h.withSelection(w, userID, func(sel *Selection) error {
		if _, err := sel.AutoFillFromQueue(body.Name); err != nil {
			return err
		}
		if err := h.log.RemoveFromQueue(r.Context(), userID, body.Name); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	})
}

func (h *Handler) runComparison(w http.ResponseWriter, r *http.Request, userID string) {
	h.withSelection(w, userID, func(sel *Selection) error {
		return sel.RunComparison(r.Context(), h.log, userID)
	})
}

func (h *Handler) resetSelection(w http.ResponseWriter, r *http.Request, userID string) {
	h.withSelection(w, userID, func(sel *Selection) error {
		sel.Reset()
		return nil
	})
}

// withSelection runs fn on the user's selection and writes either the
// mapped domain error or the fresh selection snapshot.
func (h *Handler) withSelection(w http.ResponseWriter, userID string, fn func(sel *Selection) error) {
	var state selectionState
	err := h.sessions.Do(userID, func(sel *Selection) error {
		if err := fn(sel); err != nil {
			return err
		}
		state = snapshot(sel)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.Error(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAllSlotsFilled), errors.Is(err, ErrDuplicateEntity):
		httpx.Error(w, err.Error(), http.StatusConflict)
	default:
		httpx.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
