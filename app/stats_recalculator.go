package app

import (
	"log"
	"time"

	"qrmenu-reco/config"
	"qrmenu-reco/database/orders"
	"qrmenu-reco/database/pairs"
)

// StatsRecalculator periodically rederives confidence, support and lift
// for every tenant's pairs. It runs off the serving path; reads may lag
// the latest counters by one cycle.
//
// Two triggers: a fixed schedule, and a per-tenant order counter that
// forces an early recalculation once enough new orders arrived.
type StatsRecalculator struct {
	pairRepo  *pairs.Repository
	orderRepo *orders.Repository
	interval  time.Duration
	threshold int

	orderNotify chan string
	pending     map[string]int
	done        chan bool
}

// NewStatsRecalculator creates a new statistics recalculator
func NewStatsRecalculator(pairRepo *pairs.Repository, orderRepo *orders.Repository, jobs config.JobsConfig) *StatsRecalculator {
	return &StatsRecalculator{
		pairRepo:    pairRepo,
		orderRepo:   orderRepo,
		interval:    time.Duration(jobs.RecalcIntervalMinutes) * time.Minute,
		threshold:   jobs.RecalcOrderThreshold,
		orderNotify: make(chan string, 256),
		pending:     make(map[string]int),
		done:        make(chan bool),
	}
}

// Start begins the recalculation loop
func (sr *StatsRecalculator) Start() {
	log.Printf("📊 Stats Recalculator started (every %v, threshold %d orders)", sr.interval, sr.threshold)

	ticker := time.NewTicker(sr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sr.recalcAll()
		case tenantID := <-sr.orderNotify:
			sr.pending[tenantID]++
			if sr.pending[tenantID] >= sr.threshold {
				sr.pending[tenantID] = 0
				sr.recalcTenant(tenantID)
			}
		case <-sr.done:
			log.Println("📊 Stats Recalculator stopped")
			return
		}
	}
}

// Stop stops the recalculation loop
func (sr *StatsRecalculator) Stop() {
	sr.done <- true
}

// NotifyOrder signals a newly processed completed order. Non-blocking:
// if the channel is full the order still counts at the next scheduled
// run.
func (sr *StatsRecalculator) NotifyOrder(tenantID string) {
	select {
	case sr.orderNotify <- tenantID:
	default:
	}
}

// recalcAll recalculates every tenant with order history
func (sr *StatsRecalculator) recalcAll() {
	tenants, err := sr.orderRepo.TenantIDs()
	if err != nil {
		log.Printf("⚠️  Stats recalc: listing tenants failed: %v", err)
		return
	}

	for _, tenantID := range tenants {
		sr.recalcTenant(tenantID)
		sr.pending[tenantID] = 0
	}
}

// recalcTenant recalculates one tenant's pair scores
func (sr *StatsRecalculator) recalcTenant(tenantID string) {
	start := time.Now()
	updated, err := sr.pairRepo.RecalculateScores(tenantID)
	if err != nil {
		log.Printf("⚠️  Stats recalc failed for tenant %s: %v", tenantID, err)
		return
	}
	if updated > 0 {
		log.Printf("✅ Recalculated %d pair scores for tenant %s in %v", updated, tenantID, time.Since(start))
	}
}
