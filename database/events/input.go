package events

// Input is one funnel submission from the serving layer, before it
// becomes an immutable stored event
type Input struct {
	TenantID          string                 `json:"tenant_id"`
	EventType         string                 `json:"event_type"`
	OrderID           string                 `json:"order_id,omitempty"`
	SourceItemID      *int64                 `json:"source_item_id,omitempty"`
	RecommendedItemID int64                  `json:"recommended_item_id"`
	RecType           string                 `json:"rec_type"`
	AlgorithmVersion  string                 `json:"algorithm_version,omitempty"`
	ExperimentGroup   string                 `json:"experiment_group,omitempty"`
	TestID            int64                  `json:"test_id,omitempty"`
	Position          int                    `json:"position,omitempty"`
	Context           map[string]interface{} `json:"context,omitempty"`
	Revenue           float64                `json:"revenue,omitempty"`
}
