package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"qrmenu-reco/database/catalog"
	models "qrmenu-reco/database/models_pkg"
	"qrmenu-reco/database/orders"
	"qrmenu-reco/database/pairs"
	"qrmenu-reco/feed"
)

// OrderNotifier receives a signal for every newly processed completed
// order. The stats recalculator uses it for its count-based trigger.
type OrderNotifier interface {
	NotifyOrder(tenantID string)
}

// OrderHandler memproses pesan order_placed dan order_completed dari feed
type OrderHandler struct {
	orderRepo   *orders.Repository
	pairRepo    *pairs.Repository
	catalogRepo *catalog.Repository
	notifier    OrderNotifier
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderRepo *orders.Repository, pairRepo *pairs.Repository, catalogRepo *catalog.Repository, notifier OrderNotifier) *OrderHandler {
	return &OrderHandler{
		orderRepo:   orderRepo,
		pairRepo:    pairRepo,
		catalogRepo: catalogRepo,
		notifier:    notifier,
	}
}

// GetMessageType mengembalikan tipe message yang di-handle
func (h *OrderHandler) GetMessageType() string {
	return "order"
}

// Handle memproses satu pesan order
func (h *OrderHandler) Handle(msg *feed.Message) error {
	var payload feed.OrderPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("order payload decode: %w", err)
	}
	if payload.TenantID == "" || payload.OrderID == "" {
		return fmt.Errorf("order payload missing tenant_id or order_id")
	}

	order, items := orderFromPayload(&payload)
	if err := h.orderRepo.Upsert(order, items); err != nil {
		return fmt.Errorf("order handler: %w", err)
	}

	if order.Status != "COMPLETED" {
		return nil
	}
	return h.learnFromCompleted(&payload)
}

// learnFromCompleted feeds a completed order into the pair counters.
// Replays are no-ops through the processed-order ledger.
func (h *OrderHandler) learnFromCompleted(payload *feed.OrderPayload) error {
	itemIDs := make([]int64, 0, len(payload.Items))
	for _, line := range payload.Items {
		itemIDs = append(itemIDs, line.ItemID)
	}

	// Items the catalog has never seen are dropped from learning; the
	// rest of the order still counts
	known, err := h.catalogRepo.GetItems(payload.TenantID, itemIDs)
	if err != nil {
		return fmt.Errorf("order handler: %w", err)
	}
	learnable := make([]int64, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		if _, ok := known[itemID]; ok {
			learnable = append(learnable, itemID)
		} else {
			log.Printf("⚠️  Order %s references unknown item %d, dropping it from learning",
				payload.OrderID, itemID)
		}
	}

	pairCount, err := h.pairRepo.RecordCooccurrence(payload.TenantID, payload.OrderID, learnable)
	if err != nil {
		return fmt.Errorf("order handler: %w", err)
	}
	if pairCount > 0 {
		log.Printf("🧾 Order %s recorded %d pairs for tenant %s", payload.OrderID, pairCount, payload.TenantID)
	}

	if h.notifier != nil {
		h.notifier.NotifyOrder(payload.TenantID)
	}
	return nil
}

// orderFromPayload maps a feed payload to the stored order and its lines.
// Status is normalized to upper case and a missing total is derived from
// the lines.
func orderFromPayload(payload *feed.OrderPayload) (*models.Order, []models.OrderItem) {
	status := strings.ToUpper(payload.Status)
	if status == "" {
		status = "ACTIVE"
	}

	placedAt := payload.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}

	completedAt := payload.CompletedAt
	if status == "COMPLETED" && completedAt == nil {
		now := time.Now()
		completedAt = &now
	}

	total := payload.Total
	if total == 0 {
		for _, line := range payload.Items {
			total += float64(line.Quantity) * line.UnitPrice
		}
	}

	order := &models.Order{
		TenantID:    payload.TenantID,
		OrderID:     payload.OrderID,
		Status:      status,
		PlacedAt:    placedAt,
		CompletedAt: completedAt,
		Total:       total,
	}

	items := make([]models.OrderItem, 0, len(payload.Items))
	for _, line := range payload.Items {
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, models.OrderItem{
			TenantID:  payload.TenantID,
			ItemID:    line.ItemID,
			Quantity:  quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return order, items
}
