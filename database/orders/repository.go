package orders

import (
	"fmt"
	"time"

	models "qrmenu-reco/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for the order history consumed
// from the ordering subsystem's feed. The history backs statistics
// recalculation, trending counts and baseline revenue; the ordering
// workflow itself lives upstream.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new orders repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores or updates an order from a feed message. A later message
// for the same (tenant, orderID) overwrites status and completion time;
// line items are only written on first sight so replays don't duplicate
// them.
func (r *Repository) Upsert(order *models.Order, items []models.OrderItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "completed_at", "total",
			}),
		}).Create(order)
		if res.Error != nil {
			return fmt.Errorf("order upsert: %w", res.Error)
		}

		if len(items) == 0 {
			return nil
		}

		// Resolve the row id; on conflict Create may not populate it
		var stored models.Order
		if err := tx.Where("tenant_id = ? AND order_id = ?", order.TenantID, order.OrderID).
			First(&stored).Error; err != nil {
			return fmt.Errorf("order lookup: %w", err)
		}

		var existing int64
		if err := tx.Model(&models.OrderItem{}).
			Where("order_ref = ?", stored.ID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("item count: %w", err)
		}
		if existing > 0 {
			return nil
		}

		for i := range items {
			items[i].OrderRef = stored.ID
			items[i].TenantID = order.TenantID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("item insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

// ActiveOrderCountsSince counts active (placed, not yet fulfilled) orders
// per item within the trailing window. This is the trending signal.
func (r *Repository) ActiveOrderCountsSince(tenantID string, since time.Time) (map[int64]int64, error) {
	return r.orderCountsByItem(tenantID, "ACTIVE", "orders.placed_at >= ?", since)
}

// CompletedOrderCountsSince counts distinct completed orders per item
// since the given time. Used for the 7-day and 30-day popularity windows.
func (r *Repository) CompletedOrderCountsSince(tenantID string, since time.Time) (map[int64]int64, error) {
	return r.orderCountsByItem(tenantID, "COMPLETED", "orders.completed_at >= ?", since)
}

func (r *Repository) orderCountsByItem(tenantID, status, timeCond string, since time.Time) (map[int64]int64, error) {
	type itemCount struct {
		ItemID int64
		Orders int64
	}
	var rows []itemCount
	err := r.db.Model(&models.OrderItem{}).
		Select("order_items.item_id AS item_id, COUNT(DISTINCT order_items.order_ref) AS orders").
		Joins("JOIN orders ON orders.id = order_items.order_ref").
		Where("order_items.tenant_id = ? AND orders.status = ?", tenantID, status).
		Where(timeCond, since).
		Group("order_items.item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("orderCountsByItem: %w", err)
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.ItemID] = row.Orders
	}
	return counts, nil
}

// CompletedRevenueBetween sums total order revenue for completed orders
// in [start, end). The aggregator compares this baseline against
// recommendation-attributed revenue.
func (r *Repository) CompletedRevenueBetween(tenantID string, start, end time.Time) (float64, int64, error) {
	type result struct {
		Revenue float64
		Orders  int64
	}
	var row result
	err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS orders").
		Where("tenant_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			tenantID, "COMPLETED", start, end).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("CompletedRevenueBetween: %w", err)
	}
	return row.Revenue, row.Orders, nil
}

// TenantIDs lists every tenant with order history. Background jobs fan
// out over this set.
func (r *Repository) TenantIDs() ([]string, error) {
	var tenants []string
	err := r.db.Model(&models.Order{}).
		Distinct("tenant_id").
		Pluck("tenant_id", &tenants).Error
	if err != nil {
		return nil, fmt.Errorf("TenantIDs: %w", err)
	}
	return tenants, nil
}
