package models

import "time"

// MenuItem mirrors the catalog entry owned by the menu subsystem.
// The recommendation core treats it as read-only: rows are upserted
// from catalog messages on the order feed and queried by the generator
// for availability, price, category and popularity.
type MenuItem struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID        string    `gorm:"type:text;not null;uniqueIndex:idx_item_tenant_item,priority:1" json:"tenant_id"`
	ItemID          int64     `gorm:"not null;uniqueIndex:idx_item_tenant_item,priority:2" json:"item_id"`
	Name            string    `gorm:"type:text" json:"name"`
	Available       bool      `gorm:"default:true" json:"available"`
	Price           float64   `gorm:"type:decimal(12,2)" json:"price"`
	CategoryID      string    `gorm:"type:text;index" json:"category_id"`
	PopularityScore int       `gorm:"default:0" json:"popularity_score"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// Order represents an order consumed from the ordering subsystem's feed.
// Completed orders are the learning signal for pair frequencies; active
// (placed, not yet fulfilled) orders feed the trending window.
//
// Key Fields:
//   - OrderID: the upstream identifier, also the idempotency key
//   - Status: ACTIVE or COMPLETED as reported by the feed
//   - CompletedAt: when the order completed (indexed for window scans)
type Order struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    string     `gorm:"type:text;not null;uniqueIndex:idx_order_tenant_order,priority:1" json:"tenant_id"`
	OrderID     string     `gorm:"type:text;not null;uniqueIndex:idx_order_tenant_order,priority:2" json:"order_id"`
	Status      string     `gorm:"type:text;not null;index" json:"status"` // ACTIVE, COMPLETED
	PlacedAt    time.Time  `gorm:"index;not null" json:"placed_at"`
	CompletedAt *time.Time `gorm:"index" json:"completed_at,omitempty"`
	Total       float64    `gorm:"type:decimal(12,2)" json:"total"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a single line of an order
type OrderItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderRef  int64   `gorm:"index;not null" json:"order_ref"` // Order.ID
	TenantID  string  `gorm:"type:text;not null;index" json:"tenant_id"`
	ItemID    int64   `gorm:"not null;index" json:"item_id"`
	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(12,2)" json:"unit_price"`
}

// TableName specifies the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// ProcessedOrder is the idempotency ledger for pair updates. A row exists
// once an order's co-occurrences have been recorded; replays are no-ops.
type ProcessedOrder struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    string    `gorm:"type:text;not null;uniqueIndex:idx_processed_tenant_order,priority:1" json:"tenant_id"`
	OrderID     string    `gorm:"type:text;not null;uniqueIndex:idx_processed_tenant_order,priority:2" json:"order_id"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processed_at"`
}

// TableName specifies the table name for ProcessedOrder
func (ProcessedOrder) TableName() string {
	return "processed_orders"
}

// ItemPairFrequency tracks how often two items appear in the same
// completed order, plus the scores derived from those counts.
//
// Key Fields:
//   - ItemA, ItemB: canonical ordering ItemA < ItemB enforced at write
//     time so each unordered pair has exactly one row
//   - TimesTogether: completed orders containing both items
//   - Confidence: P(B|A) over the tenant's completed orders, in [0,1]
//   - Support: fraction of all completed orders containing the pair
//   - Lift: observed co-occurrence vs independence, neutral at 1.0
//   - TimesRecommended/Clicked/Converted, RevenueGenerated: funnel
//     performance counters maintained by the event tracker
//
// Counts are mutated by the pair store, derived scores by the
// recalculator, performance counters by the event tracker. Rows are
// never deleted during normal operation.
type ItemPairFrequency struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID         string    `gorm:"type:text;not null;uniqueIndex:idx_pair_tenant_a_b,priority:1;index:idx_pair_tenant_b,priority:1" json:"tenant_id"`
	ItemA            int64     `gorm:"not null;uniqueIndex:idx_pair_tenant_a_b,priority:2" json:"item_a"`
	ItemB            int64     `gorm:"not null;uniqueIndex:idx_pair_tenant_a_b,priority:3;index:idx_pair_tenant_b,priority:2" json:"item_b"`
	TimesTogether    int64     `gorm:"not null;default:1" json:"times_together"`
	Confidence       float64   `gorm:"type:decimal(6,4);default:0" json:"confidence"`
	Support          float64   `gorm:"type:decimal(6,4);default:0" json:"support"`
	Lift             float64   `gorm:"type:decimal(10,4);default:1" json:"lift"`
	TimesRecommended int64     `gorm:"default:0" json:"times_recommended"`
	TimesClicked     int64     `gorm:"default:0" json:"times_clicked"`
	TimesConverted   int64     `gorm:"default:0" json:"times_converted"`
	RevenueGenerated float64   `gorm:"type:decimal(14,2);default:0" json:"revenue_generated"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for ItemPairFrequency
func (ItemPairFrequency) TableName() string {
	return "item_pair_frequencies"
}

// RecommendationEvent is one immutable step of the impression → click →
// conversion funnel. Events are append-only: created once, never mutated
// or deleted.
type RecommendationEvent struct {
	ID                string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID          string     `gorm:"type:text;not null;index:idx_event_tenant_time,priority:1" json:"tenant_id"`
	OrderID           *string    `gorm:"type:text" json:"order_id,omitempty"`
	SourceItemID      *int64     `json:"source_item_id,omitempty"`
	RecommendedItemID int64      `gorm:"not null;index" json:"recommended_item_id"`
	RecType           string     `gorm:"type:text;not null" json:"rec_type"`    // cooccurrence, category_popular, complement, trending
	EventType         string     `gorm:"type:text;not null;index" json:"event_type"` // impression, click, conversion
	AlgorithmVersion  string     `gorm:"type:text" json:"algorithm_version"`
	ExperimentGroup   string     `gorm:"type:text" json:"experiment_group"` // control, variant, or empty
	Position          int        `gorm:"default:0" json:"position"`
	Context           string     `gorm:"type:jsonb" json:"context,omitempty"`
	Revenue           float64    `gorm:"type:decimal(12,2);default:0" json:"revenue"` // nonzero only for conversion
	CreatedAt         time.Time  `gorm:"autoCreateTime;index:idx_event_tenant_time,priority:2" json:"created_at"`
}

// TableName specifies the table name for RecommendationEvent
func (RecommendationEvent) TableName() string {
	return "recommendation_events"
}

// PerformanceSummary is the periodic rollup of funnel events for one
// tenant and period. Upsertable by its unique key so re-aggregation
// overwrites instead of double-counting.
type PerformanceSummary struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID        string    `gorm:"type:text;not null;uniqueIndex:idx_summary_key,priority:1" json:"tenant_id"`
	PeriodKind      string    `gorm:"type:text;not null;uniqueIndex:idx_summary_key,priority:2" json:"period_kind"` // daily, weekly, monthly
	PeriodStart     time.Time `gorm:"not null;uniqueIndex:idx_summary_key,priority:3" json:"period_start"`
	Impressions     int64     `gorm:"default:0" json:"impressions"`
	Clicks          int64     `gorm:"default:0" json:"clicks"`
	Conversions     int64     `gorm:"default:0" json:"conversions"`
	Revenue         float64   `gorm:"type:decimal(14,2);default:0" json:"revenue"`
	BaselineRevenue float64   `gorm:"type:decimal(14,2);default:0" json:"baseline_revenue"`
	CTR             float64   `gorm:"type:decimal(6,4);default:0" json:"ctr"`
	ConversionRate  float64   `gorm:"type:decimal(6,4);default:0" json:"conversion_rate"`
	OrderValueLift  float64   `gorm:"type:decimal(10,4);default:0" json:"order_value_lift"`
	TopItemID       *int64    `json:"top_item_id,omitempty"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for PerformanceSummary
func (PerformanceSummary) TableName() string {
	return "performance_summaries"
}

// ABTestConfig defines one experiment comparing two recommendation
// algorithm versions for a tenant.
//
// Lifecycle: draft → running → {paused, completed}. Assignment only
// considers running tests whose [StartsAt, EndsAt) window contains now.
type ABTestConfig struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID           string     `gorm:"type:text;not null;uniqueIndex:idx_abtest_tenant_name,priority:1" json:"tenant_id"`
	Name               string     `gorm:"type:text;not null;uniqueIndex:idx_abtest_tenant_name,priority:2" json:"name"`
	Status             string     `gorm:"type:text;not null;default:draft;index" json:"status"` // draft, running, paused, completed
	ControlAlgorithm   string     `gorm:"type:text;not null" json:"control_algorithm"`
	VariantAlgorithm   string     `gorm:"type:text;not null" json:"variant_algorithm"`
	TrafficSplitPct    int        `gorm:"not null;default:50" json:"traffic_split_pct"` // percent routed to variant
	StartsAt           time.Time  `json:"starts_at"`
	EndsAt             time.Time  `json:"ends_at"`
	ControlConversions int64      `gorm:"default:0" json:"control_conversions"`
	ControlRevenue     float64    `gorm:"type:decimal(14,2);default:0" json:"control_revenue"`
	VariantConversions int64      `gorm:"default:0" json:"variant_conversions"`
	VariantRevenue     float64    `gorm:"type:decimal(14,2);default:0" json:"variant_revenue"`
	Winner             *string    `gorm:"type:text" json:"winner,omitempty"`
	Significance       *float64   `gorm:"type:decimal(10,4)" json:"significance,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for ABTestConfig
func (ABTestConfig) TableName() string {
	return "ab_test_configs"
}

// TenantConfig stores per-tenant overrides for recommendation parameters.
// Absent rows fall back to the process-level defaults from config.
type TenantConfig struct {
	ID                    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID              string    `gorm:"type:text;not null;uniqueIndex" json:"tenant_id"`
	MinConfidence         float64   `gorm:"type:decimal(6,4)" json:"min_confidence"`
	MinLift               float64   `gorm:"type:decimal(10,4)" json:"min_lift"`
	MinTimesTogether      int       `json:"min_times_together"`
	Weight7Days           float64   `gorm:"type:decimal(10,4)" json:"weight_7d"`
	Weight30Days          float64   `gorm:"type:decimal(10,4)" json:"weight_30d"`
	WeightAllTime         float64   `gorm:"type:decimal(10,4)" json:"weight_alltime"`
	AppetizerPriceCap     float64   `gorm:"type:decimal(12,2)" json:"appetizer_price_cap"`
	MaxCartForStarter     int       `json:"max_cart_for_starter"`
	TrendingWindowMinutes int       `json:"trending_window_minutes"`
	TrendingMinOrders     int       `json:"trending_min_orders"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for TenantConfig
func (TenantConfig) TableName() string {
	return "tenant_configs"
}
