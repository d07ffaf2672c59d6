package handlers

import (
	"encoding/json"
	"fmt"

	"qrmenu-reco/database/catalog"
	models "qrmenu-reco/database/models_pkg"
	"qrmenu-reco/feed"
)

// CatalogHandler memproses pesan catalog_item dari feed dan menjaga
// salinan katalog tetap segar
type CatalogHandler struct {
	catalogRepo *catalog.Repository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogRepo *catalog.Repository) *CatalogHandler {
	return &CatalogHandler{catalogRepo: catalogRepo}
}

// GetMessageType mengembalikan tipe message yang di-handle
func (h *CatalogHandler) GetMessageType() string {
	return feed.TypeCatalogItem
}

// Handle memproses satu pesan katalog
func (h *CatalogHandler) Handle(msg *feed.Message) error {
	var payload feed.CatalogPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("catalog payload decode: %w", err)
	}
	if payload.TenantID == "" || payload.ItemID == 0 {
		return fmt.Errorf("catalog payload missing tenant_id or item_id")
	}

	item := &models.MenuItem{
		TenantID:        payload.TenantID,
		ItemID:          payload.ItemID,
		Name:            payload.Name,
		Available:       payload.Available,
		Price:           payload.Price,
		CategoryID:      payload.CategoryID,
		PopularityScore: payload.PopularityScore,
	}
	if err := h.catalogRepo.UpsertItem(item); err != nil {
		return fmt.Errorf("catalog handler: %w", err)
	}
	return nil
}
