package api

import (
	"encoding/json"
	"net/http"

	"qrmenu-reco/database/events"
)

// handleSubmitEvent accepts one funnel event. Impressions and clicks are
// acknowledged as soon as they are queued; conversions only after the
// durable write.
func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	var input events.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.TenantID == "" {
		http.Error(w, "tenant_id is required", http.StatusBadRequest)
		return
	}

	if s.tracker == nil {
		http.Error(w, "event tracking unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := s.tracker.Track(input); err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
