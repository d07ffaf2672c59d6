package api

import (
	"net/http"
	"time"

	"qrmenu-reco/abtest"
	"qrmenu-reco/recommend"
)

// recommendationResponse is the serving payload: the ranked candidates
// plus the experiment assignment the caller should echo back on events
type recommendationResponse struct {
	TenantID        string                `json:"tenant_id"`
	Assignment      abtest.Assignment     `json:"assignment"`
	Recommendations []recommend.Candidate `json:"recommendations"`
}

// handleGetRecommendations serves ranked suggestions for an item, a
// category, a cart, or (with no context) trending items
func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	now := time.Now()
	test, err := s.abtestRepo.RunningTest(tenantID, now)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	assignment := abtest.Assign(test, r.URL.Query().Get("session_id"), s.defaults.DefaultAlgorithmVersion, now)

	maxLimit := 20
	req := recommend.Request{
		TenantID:    tenantID,
		ItemID:      getInt64Param(r, "item_id"),
		CategoryID:  r.URL.Query().Get("category_id"),
		CartItemIDs: getInt64ListParam(r, "cart"),
		Limit:       getIntParam(r, "limit", 0, nil, &maxLimit),
	}

	candidates, err := s.engine.Recommend(r.Context(), req)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if candidates == nil {
		candidates = []recommend.Candidate{}
	}

	respondJSON(w, http.StatusOK, recommendationResponse{
		TenantID:        tenantID,
		Assignment:      assignment,
		Recommendations: candidates,
	})
}

// handleAssign exposes the deterministic bucket assignment on its own,
// for callers that resolve the experiment before asking for suggestions
func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	now := time.Now()
	test, err := s.abtestRepo.RunningTest(tenantID, now)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, abtest.Assign(test, sessionID, s.defaults.DefaultAlgorithmVersion, now))
}
