package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	models "qrmenu-reco/database/models_pkg"
)

// Experiment configuration handlers. Validation lives in the abtests
// repository; these map HTTP to it.

func (s *Server) handleListABTests(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	tests, err := s.abtestRepo.List(tenantID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tests)
}

func (s *Server) handleCreateABTest(w http.ResponseWriter, r *http.Request) {
	var test models.ABTestConfig
	if err := json.NewDecoder(r.Body).Decode(&test); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if test.TenantID == "" {
		http.Error(w, "tenant_id is required", http.StatusBadRequest)
		return
	}

	// Reset ID to let DB assign it
	test.ID = 0

	if err := s.abtestRepo.Create(&test); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, test)
}

func (s *Server) handleUpdateABTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var test models.ABTestConfig
	if err := json.NewDecoder(r.Body).Decode(&test); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if test.TenantID == "" {
		http.Error(w, "tenant_id is required", http.StatusBadRequest)
		return
	}

	test.ID = id // Ensure ID matches path
	if err := s.abtestRepo.Update(&test); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, test)
}

func (s *Server) handleTransitionABTest(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}

	if err := s.abtestRepo.Transition(tenantID, id, body.Status); err != nil {
		respondRepoError(w, err)
		return
	}

	test, err := s.abtestRepo.Get(tenantID, id)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, test)
}

func (s *Server) handleDeclareWinner(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Winner string `json:"winner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Winner == "" {
		http.Error(w, "winner is required", http.StatusBadRequest)
		return
	}

	if err := s.abtestRepo.DeclareWinner(tenantID, id, body.Winner); err != nil {
		respondRepoError(w, err)
		return
	}

	test, err := s.abtestRepo.Get(tenantID, id)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, test)
}

// pathID parses the {id} path segment
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
