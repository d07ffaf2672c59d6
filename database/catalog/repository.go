package catalog

import (
	"fmt"

	models "qrmenu-reco/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for the menu catalog mirror.
// The menu subsystem owns the catalog; this mirror exists so the
// generator can check availability, price, category and popularity
// without a synchronous upstream call.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertItem stores or refreshes one catalog entry from the feed
func (r *Repository) UpsertItem(item *models.MenuItem) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "available", "price", "category_id", "popularity_score", "updated_at",
		}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("UpsertItem: %w", err)
	}
	return nil
}

// GetItem retrieves one catalog entry, nil if unknown
func (r *Repository) GetItem(tenantID string, itemID int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.Where("tenant_id = ? AND item_id = ?", tenantID, itemID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetItem: %w", err)
	}
	return &item, nil
}

// GetItems retrieves catalog entries for a set of item IDs, keyed by item ID.
// Unknown IDs are simply absent from the result.
func (r *Repository) GetItems(tenantID string, itemIDs []int64) (map[int64]models.MenuItem, error) {
	if len(itemIDs) == 0 {
		return map[int64]models.MenuItem{}, nil
	}

	var items []models.MenuItem
	err := r.db.Where("tenant_id = ? AND item_id IN ?", tenantID, itemIDs).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("GetItems: %w", err)
	}

	byID := make(map[int64]models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ItemID] = item
	}
	return byID, nil
}

// AvailableByCategory retrieves available items of one category ordered
// by popularity desc
func (r *Repository) AvailableByCategory(tenantID, categoryID string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.Where("tenant_id = ? AND category_id = ? AND available = true", tenantID, categoryID).
		Order("popularity_score DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("AvailableByCategory: %w", err)
	}
	return items, nil
}

// AvailableItems retrieves every available item for a tenant
func (r *Repository) AvailableItems(tenantID string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.Where("tenant_id = ? AND available = true", tenantID).
		Order("popularity_score DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("AvailableItems: %w", err)
	}
	return items, nil
}
