package app

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"qrmenu-reco/config"
	"qrmenu-reco/database"
	"qrmenu-reco/database/analytics"
	"qrmenu-reco/database/events"
	models "qrmenu-reco/database/models_pkg"
	"qrmenu-reco/database/orders"

	"golang.org/x/sync/errgroup"
)

// PerformanceAggregator periodically folds funnel events into
// per-period summary rows. Tenants are aggregated concurrently; one
// tenant's failure never aborts the others. A Postgres advisory lock
// per (tenant, period) keeps overlapping runs from racing, and the
// summary upsert key makes re-runs idempotent either way.
type PerformanceAggregator struct {
	eventRepo   *events.Repository
	orderRepo   *orders.Repository
	summaryRepo *analytics.Repository
	lock        *database.LockConn
	interval    time.Duration
	done        chan bool
}

// NewPerformanceAggregator creates a new performance aggregator
func NewPerformanceAggregator(eventRepo *events.Repository, orderRepo *orders.Repository, summaryRepo *analytics.Repository, lock *database.LockConn, jobs config.JobsConfig) *PerformanceAggregator {
	return &PerformanceAggregator{
		eventRepo:   eventRepo,
		orderRepo:   orderRepo,
		summaryRepo: summaryRepo,
		lock:        lock,
		interval:    time.Duration(jobs.AggregateIntervalMinutes) * time.Minute,
		done:        make(chan bool),
	}
}

// Start begins the aggregation loop
func (pa *PerformanceAggregator) Start() {
	log.Printf("📊 Performance Aggregator started (every %v)", pa.interval)

	ticker := time.NewTicker(pa.interval)
	defer ticker.Stop()

	// Initial run
	pa.runOnce(time.Now())

	for {
		select {
		case <-ticker.C:
			pa.runOnce(time.Now())
		case <-pa.done:
			log.Println("📊 Performance Aggregator stopped")
			return
		}
	}
}

// Stop stops the aggregation loop
func (pa *PerformanceAggregator) Stop() {
	pa.done <- true
}

// runOnce aggregates the current daily, weekly and monthly periods for
// every tenant with events
func (pa *PerformanceAggregator) runOnce(now time.Time) {
	tenants, err := pa.eventRepo.TenantIDs()
	if err != nil {
		log.Printf("⚠️  Aggregation: listing tenants failed: %v", err)
		return
	}
	if len(tenants) == 0 {
		return
	}

	start := time.Now()
	var failures int64

	g := new(errgroup.Group)
	g.SetLimit(4)
	for _, tenantID := range tenants {
		tenantID := tenantID
		g.Go(func() error {
			// Failures are isolated per tenant: log, count, keep going
			if err := pa.AggregateTenant(tenantID, now); err != nil {
				atomic.AddInt64(&failures, 1)
				log.Printf("⚠️  Aggregation failed for tenant %s: %v", tenantID, err)
			}
			return nil
		})
	}
	g.Wait()

	if failures > 0 {
		log.Printf("⚠️  Aggregation finished with %d/%d tenant failures in %v", failures, len(tenants), time.Since(start))
	} else {
		log.Printf("✅ Aggregated %d tenants in %v", len(tenants), time.Since(start))
	}
}

// AggregateTenant rolls up the three current periods for one tenant.
// Each run also re-aggregates the just-closed previous period, so events
// recorded between the last tick inside a period and its boundary still
// reach that period's final summary.
func (pa *PerformanceAggregator) AggregateTenant(tenantID string, now time.Time) error {
	for _, periodKind := range []string{analytics.PeriodDaily, analytics.PeriodWeekly, analytics.PeriodMonthly} {
		if err := pa.Aggregate(tenantID, periodKind, analytics.PreviousPeriodStart(periodKind, now)); err != nil {
			return err
		}
		if err := pa.Aggregate(tenantID, periodKind, now); err != nil {
			return err
		}
	}
	return nil
}

// Aggregate computes and upserts the summary for one (tenant, period).
// Skips silently when a concurrent run holds the period's lock.
func (pa *PerformanceAggregator) Aggregate(tenantID, periodKind string, at time.Time) error {
	start, end := analytics.PeriodWindow(periodKind, at)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if pa.lock != nil {
		acquired, err := pa.lock.TryLock(ctx, tenantID, periodKind, start)
		if err != nil {
			return err
		}
		if !acquired {
			log.Printf("🔒 Aggregation for tenant %s %s/%s already running, skipping",
				tenantID, periodKind, start.Format("2006-01-02"))
			return nil
		}
		defer pa.lock.Unlock(ctx, tenantID, periodKind, start)
	}

	counts, err := pa.eventRepo.CountsBetween(tenantID, start, end)
	if err != nil {
		return err
	}

	baselineRevenue, _, err := pa.orderRepo.CompletedRevenueBetween(tenantID, start, end)
	if err != nil {
		return err
	}

	rates := analytics.ComputeRates(counts.Impressions, counts.Clicks, counts.Conversions)

	summary := &models.PerformanceSummary{
		TenantID:        tenantID,
		PeriodKind:      periodKind,
		PeriodStart:     start,
		Impressions:     counts.Impressions,
		Clicks:          counts.Clicks,
		Conversions:     counts.Conversions,
		Revenue:         counts.Revenue,
		BaselineRevenue: baselineRevenue,
		CTR:             rates.CTR,
		ConversionRate:  rates.ConversionRate,
		OrderValueLift:  analytics.ComputeOrderValueLift(counts.Revenue, baselineRevenue),
	}

	top, err := pa.eventRepo.TopConvertedItem(tenantID, start, end)
	if err != nil {
		return err
	}
	if top != nil {
		summary.TopItemID = &top.ItemID
	}

	return pa.summaryRepo.UpsertSummary(summary)
}
