// Package recommend generates ranked item suggestions from the
// precomputed pair statistics, the catalog mirror and the order history.
// Each strategy is a tagged type behind the Strategy interface, pure over
// an already-materialized Snapshot; strategies never trigger
// recomputation and never write state.
package recommend

import (
	"qrmenu-reco/config"
	models "qrmenu-reco/database/models_pkg"
)

// Strategy tags, carried on every candidate and on every funnel event
// recorded for it
const (
	TagCooccurrence    = "cooccurrence"
	TagCategoryPopular = "category_popular"
	TagComplement      = "complement"
	TagTrending        = "trending"
)

// Candidate is one ranked suggestion
type Candidate struct {
	ItemID  int64   `json:"item_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Reason  string  `json:"reason"`
	Score   float64 `json:"score"`
	RecType string  `json:"rec_type"`
}

// Request describes the serving context. Exactly one context field is
// expected; precedence when several are set is item, category, cart,
// then trending as the empty-context fallback.
type Request struct {
	TenantID    string  `json:"tenant_id"`
	ItemID      int64   `json:"item_id,omitempty"`
	CategoryID  string  `json:"category_id,omitempty"`
	CartItemIDs []int64 `json:"cart_item_ids,omitempty"`
	Limit       int     `json:"limit,omitempty"`
}

// Snapshot is the read-only data one serving request works over. The
// engine fills only the fields the selected strategy consumes; the
// strategies communicate with the rest of the system through nothing
// else.
type Snapshot struct {
	// Co-occurrence
	SourceItemID int64
	Pairs        []models.ItemPairFrequency
	Items        map[int64]models.MenuItem

	// Category popularity
	CategoryItems []models.MenuItem
	Counts7d      map[int64]int64
	Counts30d     map[int64]int64
	Exclude       map[int64]bool

	// Meal complement
	Cart      []models.MenuItem
	Available []models.MenuItem

	// Trending
	ActiveCounts map[int64]int64
}

// Strategy is one recommendation algorithm. Implementations are pure:
// same snapshot and config, same candidates.
type Strategy interface {
	// Tag returns the strategy tag stamped on every candidate
	Tag() string

	// Generate ranks candidates from the snapshot
	Generate(snap *Snapshot, cfg config.RecommendConfig, limit int) []Candidate
}
