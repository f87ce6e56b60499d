// Package httpx holds the small JSON response helpers shared by every
// handler package.
package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, msg string, code int) {
	JSON(w, code, map[string]string{"error": msg})
}

// UserID extracts the x-user-id header forwarded by the gateway. When the
// header is missing it writes a 401 and returns false.
func UserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		Error(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}
