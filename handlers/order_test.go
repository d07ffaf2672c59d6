package handlers

import (
	"testing"
	"time"

	"qrmenu-reco/feed"
)

func TestOrderFromPayload(t *testing.T) {
	completedAt := time.Date(2025, 6, 11, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		payload     feed.OrderPayload
		expStatus   string
		expTotal    float64
		expItems    int
		expComplete bool
	}{
		{
			name: "Completed With Total",
			payload: feed.OrderPayload{
				TenantID:    "tenant-1",
				OrderID:     "ord-1",
				Status:      "completed",
				CompletedAt: &completedAt,
				Total:       25.50,
				Items: []feed.OrderLine{
					{ItemID: 1, Quantity: 2, UnitPrice: 10},
					{ItemID: 2, Quantity: 1, UnitPrice: 5.50},
				},
			},
			expStatus:   "COMPLETED",
			expTotal:    25.50,
			expItems:    2,
			expComplete: true,
		},
		{
			// Missing total is derived from the lines
			name: "Total From Lines",
			payload: feed.OrderPayload{
				TenantID: "tenant-1",
				OrderID:  "ord-2",
				Status:   "COMPLETED",
				Items: []feed.OrderLine{
					{ItemID: 1, Quantity: 2, UnitPrice: 10},
					{ItemID: 2, Quantity: 1, UnitPrice: 5.50},
				},
			},
			expStatus:   "COMPLETED",
			expTotal:    25.50,
			expItems:    2,
			expComplete: true,
		},
		{
			name: "Placed Defaults To Active",
			payload: feed.OrderPayload{
				TenantID: "tenant-1",
				OrderID:  "ord-3",
				Items:    []feed.OrderLine{{ItemID: 1, Quantity: 1, UnitPrice: 4}},
			},
			expStatus:   "ACTIVE",
			expTotal:    4,
			expItems:    1,
			expComplete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, items := orderFromPayload(&tt.payload)

			if order.Status != tt.expStatus {
				t.Errorf("status: expected %s, got %s", tt.expStatus, order.Status)
			}
			if order.Total != tt.expTotal {
				t.Errorf("total: expected %f, got %f", tt.expTotal, order.Total)
			}
			if len(items) != tt.expItems {
				t.Errorf("items: expected %d, got %d", tt.expItems, len(items))
			}
			if tt.expComplete && order.CompletedAt == nil {
				t.Error("completed order must carry a completion time")
			}
			if !tt.expComplete && order.CompletedAt != nil {
				t.Error("active order must not carry a completion time")
			}
			if order.PlacedAt.IsZero() {
				t.Error("placed_at must be set")
			}
		})
	}
}

func TestOrderFromPayloadZeroQuantity(t *testing.T) {
	payload := feed.OrderPayload{
		TenantID: "tenant-1",
		OrderID:  "ord-4",
		Status:   "ACTIVE",
		Items:    []feed.OrderLine{{ItemID: 1, Quantity: 0, UnitPrice: 4}},
	}

	_, items := orderFromPayload(&payload)
	if items[0].Quantity != 1 {
		t.Errorf("zero quantity must default to 1, got %d", items[0].Quantity)
	}
}
