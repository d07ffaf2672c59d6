package tenants

import (
	"fmt"

	"qrmenu-reco/config"
	models "qrmenu-reco/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for per-tenant configuration
// overrides
type Repository struct {
	db       *gorm.DB
	defaults config.RecommendConfig
}

// NewRepository creates a new tenants repository
func NewRepository(db *gorm.DB, defaults config.RecommendConfig) *Repository {
	return &Repository{db: db, defaults: defaults}
}

// Get retrieves the raw override row, nil if the tenant never stored one
func (r *Repository) Get(tenantID string) (*models.TenantConfig, error) {
	var cfg models.TenantConfig
	err := r.db.Where("tenant_id = ?", tenantID).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &cfg, nil
}

// Upsert stores or replaces the tenant's overrides
func (r *Repository) Upsert(cfg *models.TenantConfig) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"min_confidence", "min_lift", "min_times_together",
			"weight_7d", "weight_30d", "weight_alltime",
			"appetizer_price_cap", "max_cart_for_starter",
			"trending_window_minutes", "trending_min_orders", "updated_at",
		}),
	}).Create(cfg).Error
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

// Resolve merges the tenant's stored overrides over the process defaults.
// Zero-valued override fields fall back to the default; a tenant without
// a row gets the defaults unchanged.
func (r *Repository) Resolve(tenantID string) (config.RecommendConfig, error) {
	resolved := r.defaults

	row, err := r.Get(tenantID)
	if err != nil {
		return resolved, err
	}
	if row == nil {
		return resolved, nil
	}

	if row.MinConfidence > 0 {
		resolved.MinConfidence = row.MinConfidence
	}
	if row.MinLift > 0 {
		resolved.MinLift = row.MinLift
	}
	if row.MinTimesTogether > 0 {
		resolved.MinTimesTogether = row.MinTimesTogether
	}
	if row.Weight7Days > 0 {
		resolved.Weight7Days = row.Weight7Days
	}
	if row.Weight30Days > 0 {
		resolved.Weight30Days = row.Weight30Days
	}
	if row.WeightAllTime > 0 {
		resolved.WeightAllTime = row.WeightAllTime
	}
	if row.AppetizerPriceCap > 0 {
		resolved.AppetizerPriceCap = row.AppetizerPriceCap
	}
	if row.MaxCartForStarter > 0 {
		resolved.MaxCartForStarter = row.MaxCartForStarter
	}
	if row.TrendingWindowMinutes > 0 {
		resolved.TrendingWindowMinutes = row.TrendingWindowMinutes
	}
	if row.TrendingMinOrders > 0 {
		resolved.TrendingMinOrders = row.TrendingMinOrders
	}
	return resolved, nil
}
