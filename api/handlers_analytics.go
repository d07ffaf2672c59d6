package api

import (
	"net/http"
	"time"

	"qrmenu-reco/database/analytics"
	"qrmenu-reco/database/events"
)

// overviewResponse is the dashboard payload for one tenant and window
type overviewResponse struct {
	TenantID        string              `json:"tenant_id"`
	From            time.Time           `json:"from"`
	To              time.Time           `json:"to"`
	Impressions     int64               `json:"impressions"`
	Clicks          int64               `json:"clicks"`
	Conversions     int64               `json:"conversions"`
	Revenue         float64             `json:"revenue"`
	BaselineRevenue float64             `json:"baseline_revenue"`
	CTR             float64             `json:"ctr"`
	ConversionRate  float64             `json:"conversion_rate"`
	OrderValueLift  float64             `json:"order_value_lift"`
	TopItems        []events.TopItem    `json:"top_items"`
	DailySeries     []events.DailyPoint `json:"daily_series"`
}

// handleGetSummaries returns the aggregated period rows
func (s *Server) handleGetSummaries(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	periodKind := r.URL.Query().Get("period_kind")
	switch periodKind {
	case "", analytics.PeriodDaily, analytics.PeriodWeekly, analytics.PeriodMonthly:
	default:
		http.Error(w, "period_kind must be daily, weekly or monthly", http.StatusBadRequest)
		return
	}

	maxLimit := 365
	summaries, err := s.analyticsRepo.GetSummaries(
		tenantID,
		periodKind,
		getTimeParam(r, "from"),
		getTimeParam(r, "to"),
		getIntParam(r, "limit", 90, nil, &maxLimit),
	)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// handleGetOverview computes the live dashboard numbers for a trailing
// window, straight from the event log
func (s *Server) handleGetOverview(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	maxDays := 365
	days := getIntParam(r, "days", 30, nil, &maxDays)
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	counts, err := s.eventRepo.CountsBetween(tenantID, start, end)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	baselineRevenue, _, err := s.orderRepo.CompletedRevenueBetween(tenantID, start, end)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	topItems, err := s.eventRepo.TopConvertedItems(tenantID, start, end, 5)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	series, err := s.eventRepo.DailySeries(tenantID, start, end)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	rates := analytics.ComputeRates(counts.Impressions, counts.Clicks, counts.Conversions)

	respondJSON(w, http.StatusOK, overviewResponse{
		TenantID:        tenantID,
		From:            start,
		To:              end,
		Impressions:     counts.Impressions,
		Clicks:          counts.Clicks,
		Conversions:     counts.Conversions,
		Revenue:         counts.Revenue,
		BaselineRevenue: baselineRevenue,
		CTR:             rates.CTR,
		ConversionRate:  rates.ConversionRate,
		OrderValueLift:  analytics.ComputeOrderValueLift(counts.Revenue, baselineRevenue),
		TopItems:        topItems,
		DailySeries:     series,
	})
}

// handleGetTopPairs returns the best converting item pairs
func (s *Server) handleGetTopPairs(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	maxLimit := 100
	pairList, err := s.pairRepo.TopPerformingPairs(tenantID, getIntParam(r, "limit", 10, nil, &maxLimit))
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pairList)
}

// handleTriggerAggregation runs aggregation for one tenant on demand.
// An optional period_start parameter re-aggregates the periods covering
// that date instead of the current ones.
func (s *Server) handleTriggerAggregation(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	if s.aggregator == nil {
		http.Error(w, "aggregation unavailable", http.StatusServiceUnavailable)
		return
	}

	at := getTimeParam(r, "period_start")
	if at.IsZero() {
		at = time.Now()
	}

	if err := s.aggregator.AggregateTenant(tenantID, at); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "aggregated"})
}
