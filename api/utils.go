package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qrmenu-reco/database"
)

// getIntParam retrieves an integer query parameter with default value and
// optional range validation
func getIntParam(r *http.Request, key string, defaultVal int, minVal, maxVal *int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}

	if minVal != nil && val < *minVal {
		return defaultVal
	}
	if maxVal != nil && val > *maxVal {
		return defaultVal
	}

	return val
}

// getInt64Param retrieves an int64 query parameter, 0 when absent or invalid
func getInt64Param(r *http.Request, key string) int64 {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return 0
	}
	val, err := strconv.ParseInt(valStr, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// getInt64ListParam parses a comma-separated list of ids
func getInt64ListParam(r *http.Request, key string) []int64 {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return nil
	}

	parts := strings.Split(valStr, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// getTimeParam parses an RFC3339 or date-only query parameter
func getTimeParam(r *http.Request, key string) time.Time {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, valStr); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", valStr); err == nil {
		return t
	}
	return time.Time{}
}

// requireTenant extracts the tenant_id parameter, writing a 400 when absent
func requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		http.Error(w, "tenant_id is required", http.StatusBadRequest)
		return "", false
	}
	return tenantID, true
}

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("API response encode failed: %v", err)
	}
}

// respondRepoError maps repository errors to status codes. Validation
// errors surface as 400, missing resources as 404, everything else is a
// logged 500 with a generic body.
func respondRepoError(w http.ResponseWriter, err error) {
	var validationErr *database.ValidationError
	if errors.As(err, &validationErr) {
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}
	var notFoundErr *database.NotFoundError
	if errors.As(err, &notFoundErr) {
		http.Error(w, notFoundErr.Error(), http.StatusNotFound)
		return
	}
	log.Printf("API Error [500]: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
