package events

import (
	"fmt"
	"time"

	models "qrmenu-reco/database/models_pkg"

	"gorm.io/gorm"
)

// Event type constants for the recommendation funnel
const (
	EventImpression = "impression"
	EventClick      = "click"
	EventConversion = "conversion"
)

// Recommendation type tags
const (
	RecCooccurrence    = "cooccurrence"
	RecCategoryPopular = "category_popular"
	RecComplement      = "complement"
	RecTrending        = "trending"
)

// FunnelCounts holds the per-window event totals the aggregator rolls up
type FunnelCounts struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// DailyPoint is one day of the analytics series
type DailyPoint struct {
	Day         time.Time `json:"day"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Revenue     float64   `json:"revenue"`
}

// TopItem is an item ranked by conversion performance
type TopItem struct {
	ItemID      int64   `json:"item_id"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// Repository handles database operations for recommendation events.
// Events are append-only; nothing here mutates or deletes a row.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new events repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save appends one immutable event
func (r *Repository) Save(event *models.RecommendationEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// CountsBetween computes funnel totals for a tenant in [start, end)
func (r *Repository) CountsBetween(tenantID string, start, end time.Time) (*FunnelCounts, error) {
	var counts FunnelCounts
	err := r.db.Model(&models.RecommendationEvent{}).
		Select(`
			SUM(CASE WHEN event_type = 'impression' THEN 1 ELSE 0 END) AS impressions,
			SUM(CASE WHEN event_type = 'click' THEN 1 ELSE 0 END) AS clicks,
			SUM(CASE WHEN event_type = 'conversion' THEN 1 ELSE 0 END) AS conversions,
			COALESCE(SUM(CASE WHEN event_type = 'conversion' THEN revenue ELSE 0 END), 0) AS revenue`).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, start, end).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("CountsBetween: %w", err)
	}
	return &counts, nil
}

// TopConvertedItem returns the item with the most conversion revenue in
// the window, nil when the window has no conversions
func (r *Repository) TopConvertedItem(tenantID string, start, end time.Time) (*TopItem, error) {
	var top TopItem
	err := r.db.Model(&models.RecommendationEvent{}).
		Select("recommended_item_id AS item_id, COUNT(*) AS conversions, COALESCE(SUM(revenue), 0) AS revenue").
		Where("tenant_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?",
			tenantID, EventConversion, start, end).
		Group("recommended_item_id").
		Order("revenue DESC").
		Order("conversions DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("TopConvertedItem: %w", err)
	}
	if top.ItemID == 0 && top.Conversions == 0 {
		return nil, nil
	}
	return &top, nil
}

// TopConvertedItems returns items ranked by conversion revenue in the window
func (r *Repository) TopConvertedItems(tenantID string, start, end time.Time, limit int) ([]TopItem, error) {
	var items []TopItem
	query := r.db.Model(&models.RecommendationEvent{}).
		Select("recommended_item_id AS item_id, COUNT(*) AS conversions, COALESCE(SUM(revenue), 0) AS revenue").
		Where("tenant_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?",
			tenantID, EventConversion, start, end).
		Group("recommended_item_id").
		Order("revenue DESC").
		Order("conversions DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("TopConvertedItems: %w", err)
	}
	return items, nil
}

// DailySeries returns per-day funnel counts for the window
func (r *Repository) DailySeries(tenantID string, start, end time.Time) ([]DailyPoint, error) {
	var series []DailyPoint
	err := r.db.Model(&models.RecommendationEvent{}).
		Select(`
			date_trunc('day', created_at) AS day,
			SUM(CASE WHEN event_type = 'impression' THEN 1 ELSE 0 END) AS impressions,
			SUM(CASE WHEN event_type = 'click' THEN 1 ELSE 0 END) AS clicks,
			SUM(CASE WHEN event_type = 'conversion' THEN 1 ELSE 0 END) AS conversions,
			COALESCE(SUM(CASE WHEN event_type = 'conversion' THEN revenue ELSE 0 END), 0) AS revenue`).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, start, end).
		Group("date_trunc('day', created_at)").
		Order("day ASC").
		Scan(&series).Error
	if err != nil {
		return nil, fmt.Errorf("DailySeries: %w", err)
	}
	return series, nil
}

// TenantIDs lists every tenant with recorded events
func (r *Repository) TenantIDs() ([]string, error) {
	var tenants []string
	err := r.db.Model(&models.RecommendationEvent{}).
		Distinct("tenant_id").
		Pluck("tenant_id", &tenants).Error
	if err != nil {
		return nil, fmt.Errorf("TenantIDs: %w", err)
	}
	return tenants, nil
}
