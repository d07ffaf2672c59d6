package api

import (
	"encoding/json"
	"net/http"

	models "qrmenu-reco/database/models_pkg"
)

// handleHealth returns the health status of the API
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleGetConfig returns the tenant's effective recommendation
// parameters: stored overrides merged over the process defaults
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	resolved, err := s.tenantRepo.Resolve(tenantID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resolved)
}

// handleUpdateConfig stores per-tenant overrides. Zero-valued fields
// keep falling back to the defaults.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.TenantConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if cfg.TenantID == "" {
		http.Error(w, "tenant_id is required", http.StatusBadRequest)
		return
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		http.Error(w, "min_confidence must be within [0,1]", http.StatusBadRequest)
		return
	}

	// Reset ID so the upsert key is the tenant, not a client-chosen row id
	cfg.ID = 0

	if err := s.tenantRepo.Upsert(&cfg); err != nil {
		respondRepoError(w, err)
		return
	}

	resolved, err := s.tenantRepo.Resolve(cfg.TenantID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resolved)
}
