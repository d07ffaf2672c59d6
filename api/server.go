package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"qrmenu-reco/config"
	"qrmenu-reco/database/abtests"
	"qrmenu-reco/database/analytics"
	"qrmenu-reco/database/events"
	"qrmenu-reco/database/orders"
	"qrmenu-reco/database/pairs"
	"qrmenu-reco/database/tenants"
	"qrmenu-reco/realtime"
	"qrmenu-reco/recommend"
)

// EventTrackerInterface accepts funnel submissions from the HTTP layer
type EventTrackerInterface interface {
	Track(input events.Input) error
}

// AggregatorInterface triggers an on-demand aggregation run
type AggregatorInterface interface {
	AggregateTenant(tenantID string, now time.Time) error
}

// Server handles HTTP API requests
type Server struct {
	engine        *recommend.Engine
	tracker       EventTrackerInterface
	aggregator    AggregatorInterface
	broker        *realtime.Broker
	abtestRepo    *abtests.Repository
	analyticsRepo *analytics.Repository
	eventRepo     *events.Repository
	orderRepo     *orders.Repository
	pairRepo      *pairs.Repository
	tenantRepo    *tenants.Repository
	defaults      config.RecommendConfig
}

// NewServer creates a new API server instance
func NewServer(engine *recommend.Engine, broker *realtime.Broker, abtestRepo *abtests.Repository, analyticsRepo *analytics.Repository, eventRepo *events.Repository, orderRepo *orders.Repository, pairRepo *pairs.Repository, tenantRepo *tenants.Repository, defaults config.RecommendConfig) *Server {
	return &Server{
		engine:        engine,
		broker:        broker,
		abtestRepo:    abtestRepo,
		analyticsRepo: analyticsRepo,
		eventRepo:     eventRepo,
		orderRepo:     orderRepo,
		pairRepo:      pairRepo,
		tenantRepo:    tenantRepo,
		defaults:      defaults,
	}
}

// SetEventTracker injects the event tracker before the server starts
func (s *Server) SetEventTracker(tracker EventTrackerInterface) {
	s.tracker = tracker
}

// SetAggregator injects the performance aggregator before the server starts
func (s *Server) SetAggregator(aggregator AggregatorInterface) {
	s.aggregator = aggregator
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Serving
	mux.HandleFunc("GET /api/recommendations", s.handleGetRecommendations)

	// Funnel events
	mux.HandleFunc("POST /api/events", s.handleSubmitEvent)
	mux.Handle("GET /api/events/stream", s.broker) // SSE endpoint

	// Analytics
	mux.HandleFunc("GET /api/analytics/summaries", s.handleGetSummaries)
	mux.HandleFunc("GET /api/analytics/overview", s.handleGetOverview)
	mux.HandleFunc("GET /api/analytics/pairs", s.handleGetTopPairs)
	mux.HandleFunc("POST /api/analytics/aggregate", s.handleTriggerAggregation)

	// A/B tests
	mux.HandleFunc("GET /api/abtests", s.handleListABTests)
	mux.HandleFunc("POST /api/abtests", s.handleCreateABTest)
	mux.HandleFunc("PUT /api/abtests/{id}", s.handleUpdateABTest)
	mux.HandleFunc("POST /api/abtests/{id}/status", s.handleTransitionABTest)
	mux.HandleFunc("POST /api/abtests/{id}/winner", s.handleDeclareWinner)
	mux.HandleFunc("GET /api/abtests/assign", s.handleAssign)

	// Per-tenant configuration
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("PUT /api/config", s.handleUpdateConfig)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, handler)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// Handlers are distributed across multiple files:
// - handlers_recommend.go: Recommendation serving and A/B assignment
// - handlers_events.go: Funnel event submission
// - handlers_analytics.go: Summaries, overview, top pairs
// - handlers_abtests.go: Experiment configuration and lifecycle
// - handlers_config.go: Per-tenant parameters, health check
