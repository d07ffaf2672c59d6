package pairs

import (
	"fmt"
	"log"
	"sort"
	"time"

	models "qrmenu-reco/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for item pair frequencies.
// It is the only writer of co-occurrence counts; derived scores are
// rewritten by RecalculateScores and performance counters by the
// event tracker paths below.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new pairs repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordCooccurrence records all unordered item pairs of a completed
// order. The upsert increments times_together atomically in the database
// so concurrent orders touching the same pair never lose an update.
//
// Idempotent per order: the processed-order ledger row is inserted in the
// same transaction, and a replayed orderID returns (0, nil) without
// touching any counter.
func (r *Repository) RecordCooccurrence(tenantID, orderID string, itemIDs []int64) (int, error) {
	ids := distinctSorted(itemIDs)
	if len(ids) < 2 {
		// Single-item orders still get a ledger entry so replays stay no-ops
		if len(ids) == 1 {
			if err := r.markProcessed(r.db, tenantID, orderID); err != nil {
				return 0, err
			}
		}
		return 0, nil
	}

	pairCount := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ProcessedOrder{
			TenantID: tenantID,
			OrderID:  orderID,
		})
		if res.Error != nil {
			return fmt.Errorf("ledger insert: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Already processed, duplicate feed delivery
			return nil
		}

		now := time.Now()
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				itemA, itemB := Canonicalize(ids[i], ids[j])

				pair := models.ItemPairFrequency{
					TenantID:      tenantID,
					ItemA:         itemA,
					ItemB:         itemB,
					TimesTogether: 1,
					Lift:          1.0,
					UpdatedAt:     now,
				}
				err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "tenant_id"}, {Name: "item_a"}, {Name: "item_b"}},
					DoUpdates: clause.Assignments(map[string]interface{}{
						"times_together": gorm.Expr("item_pair_frequencies.times_together + 1"),
						"updated_at":     now,
					}),
				}).Create(&pair).Error
				if err != nil {
					return fmt.Errorf("pair upsert (%d,%d): %w", itemA, itemB, err)
				}
				pairCount++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("RecordCooccurrence: %w", err)
	}
	return pairCount, nil
}

// markProcessed inserts a ledger row outside the pair loop
func (r *Repository) markProcessed(db *gorm.DB, tenantID, orderID string) error {
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ProcessedOrder{
		TenantID: tenantID,
		OrderID:  orderID,
	}).Error
	if err != nil {
		return fmt.Errorf("markProcessed: %w", err)
	}
	return nil
}

// GetPairsFor retrieves all pair rows a given item participates in
func (r *Repository) GetPairsFor(tenantID string, itemID int64) ([]models.ItemPairFrequency, error) {
	var pairList []models.ItemPairFrequency
	err := r.db.Where("tenant_id = ? AND (item_a = ? OR item_b = ?)", tenantID, itemID, itemID).
		Find(&pairList).Error
	if err != nil {
		return nil, fmt.Errorf("GetPairsFor: %w", err)
	}
	return pairList, nil
}

// IncrementRecommended bumps times_recommended for the pair an impression
// was shown for. Pairs that don't exist yet (no order ever contained both
// items) are a silent no-op.
func (r *Repository) IncrementRecommended(tenantID string, itemA, itemB int64) error {
	return r.incrementCounter(tenantID, itemA, itemB, "times_recommended")
}

// IncrementClicked bumps times_clicked for the pair a click landed on
func (r *Repository) IncrementClicked(tenantID string, itemA, itemB int64) error {
	return r.incrementCounter(tenantID, itemA, itemB, "times_clicked")
}

func (r *Repository) incrementCounter(tenantID string, itemA, itemB int64, column string) error {
	a, b := Canonicalize(itemA, itemB)
	res := r.db.Model(&models.ItemPairFrequency{}).
		Where("tenant_id = ? AND item_a = ? AND item_b = ?", tenantID, a, b).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return fmt.Errorf("incrementCounter %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("Pair (%d, %d) doesn't exist yet for tenant %s, skipping %s", a, b, tenantID, column)
	}
	return nil
}

// CreditConversion increments times_converted and revenue_generated on
// every pair containing the converted item. The causal pair is not known
// here; the conversion credits all pairs the item participates in.
func (r *Repository) CreditConversion(tenantID string, itemID int64, revenue float64) (int64, error) {
	res := r.db.Model(&models.ItemPairFrequency{}).
		Where("tenant_id = ? AND (item_a = ? OR item_b = ?)", tenantID, itemID, itemID).
		UpdateColumns(map[string]interface{}{
			"times_converted":   gorm.Expr("times_converted + 1"),
			"revenue_generated": gorm.Expr("revenue_generated + ?", revenue),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("CreditConversion: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// TopPerformingPairs returns the most successful pairs by generated
// revenue, then conversions
func (r *Repository) TopPerformingPairs(tenantID string, limit int) ([]models.ItemPairFrequency, error) {
	var pairList []models.ItemPairFrequency
	query := r.db.Where("tenant_id = ? AND times_converted > 0", tenantID).
		Order("revenue_generated DESC").
		Order("times_converted DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&pairList).Error; err != nil {
		return nil, fmt.Errorf("TopPerformingPairs: %w", err)
	}
	return pairList, nil
}

// RecalculateScores recomputes confidence, support and lift for every
// pair of a tenant from the completed order history. Runs off the serving
// path; derived values are overwritten in place.
func (r *Repository) RecalculateScores(tenantID string) (int, error) {
	totalOrders, err := r.completedOrderCount(tenantID)
	if err != nil {
		return 0, err
	}

	ordersPerItem, err := r.completedOrdersPerItem(tenantID)
	if err != nil {
		return 0, err
	}

	var pairList []models.ItemPairFrequency
	if err := r.db.Where("tenant_id = ?", tenantID).Find(&pairList).Error; err != nil {
		return 0, fmt.Errorf("RecalculateScores: %w", err)
	}

	updated := 0
	for _, pair := range pairList {
		confidence, support, lift := DeriveScores(
			pair.TimesTogether,
			ordersPerItem[pair.ItemA],
			ordersPerItem[pair.ItemB],
			totalOrders,
		)

		if pair.Confidence == confidence && pair.Support == support && pair.Lift == lift {
			continue
		}

		err := r.db.Model(&models.ItemPairFrequency{}).
			Where("id = ?", pair.ID).
			UpdateColumns(map[string]interface{}{
				"confidence": confidence,
				"support":    support,
				"lift":       lift,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return updated, fmt.Errorf("RecalculateScores update pair %d: %w", pair.ID, err)
		}
		updated++
	}
	return updated, nil
}

// completedOrderCount counts completed orders for the tenant
func (r *Repository) completedOrderCount(tenantID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, "COMPLETED").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("completedOrderCount: %w", err)
	}
	return count, nil
}

// completedOrdersPerItem counts distinct completed orders containing each item
func (r *Repository) completedOrdersPerItem(tenantID string) (map[int64]int64, error) {
	type itemCount struct {
		ItemID int64
		Orders int64
	}
	var rows []itemCount
	err := r.db.Model(&models.OrderItem{}).
		Select("order_items.item_id AS item_id, COUNT(DISTINCT order_items.order_ref) AS orders").
		Joins("JOIN orders ON orders.id = order_items.order_ref").
		Where("order_items.tenant_id = ? AND orders.status = ?", tenantID, "COMPLETED").
		Group("order_items.item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("completedOrdersPerItem: %w", err)
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.ItemID] = row.Orders
	}
	return counts, nil
}

// Canonicalize orders a pair so the smaller item ID comes first. Every
// unordered pair maps to exactly one row through this.
func Canonicalize(itemA, itemB int64) (int64, int64) {
	if itemA > itemB {
		return itemB, itemA
	}
	return itemA, itemB
}

// distinctSorted deduplicates and sorts item IDs
func distinctSorted(itemIDs []int64) []int64 {
	seen := make(map[int64]bool, len(itemIDs))
	out := make([]int64, 0, len(itemIDs))
	for _, id := range itemIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
