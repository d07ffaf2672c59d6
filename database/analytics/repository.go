package analytics

import (
	"fmt"
	"time"

	models "qrmenu-reco/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for performance summaries
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new analytics repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSummary writes the summary row for (tenant, periodKind,
// periodStart). Re-aggregating a period overwrites the previous values;
// the unique key makes the operation idempotent.
func (r *Repository) UpsertSummary(summary *models.PerformanceSummary) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "period_kind"}, {Name: "period_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"impressions", "clicks", "conversions", "revenue", "baseline_revenue",
			"ctr", "conversion_rate", "order_value_lift", "top_item_id", "updated_at",
		}),
	}).Create(summary).Error
	if err != nil {
		return fmt.Errorf("UpsertSummary: %w", err)
	}
	return nil
}

// GetSummaries retrieves summary rows for a tenant and period kind within
// a date range, newest first
func (r *Repository) GetSummaries(tenantID, periodKind string, from, to time.Time, limit int) ([]models.PerformanceSummary, error) {
	var summaries []models.PerformanceSummary
	query := r.db.Where("tenant_id = ?", tenantID).Order("period_start DESC")

	if periodKind != "" {
		query = query.Where("period_kind = ?", periodKind)
	}
	if !from.IsZero() {
		query = query.Where("period_start >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("period_start < ?", to)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("GetSummaries: %w", err)
	}
	return summaries, nil
}
