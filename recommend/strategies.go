package recommend

import (
	"fmt"
	"sort"
	"strings"

	"qrmenu-reco/config"
	models "qrmenu-reco/database/models_pkg"
)

// CoOccurrenceStrategy serves "frequently bought together" from the
// precomputed pair statistics
type CoOccurrenceStrategy struct{}

func (CoOccurrenceStrategy) Tag() string { return TagCooccurrence }

func (CoOccurrenceStrategy) Generate(snap *Snapshot, cfg config.RecommendConfig, limit int) []Candidate {
	return CoOccurrence(snap.SourceItemID, snap.Pairs, snap.Items, cfg, limit)
}

// CategoryPopularStrategy serves the weighted popularity ranking of one
// category
type CategoryPopularStrategy struct{}

func (CategoryPopularStrategy) Tag() string { return TagCategoryPopular }

func (CategoryPopularStrategy) Generate(snap *Snapshot, cfg config.RecommendConfig, limit int) []Candidate {
	return CategoryPopular(snap.CategoryItems, snap.Counts7d, snap.Counts30d, snap.Exclude, cfg, limit)
}

// MealComplementStrategy serves the rule-based "complete your meal"
// suggestions for a cart
type MealComplementStrategy struct{}

func (MealComplementStrategy) Tag() string { return TagComplement }

func (MealComplementStrategy) Generate(snap *Snapshot, cfg config.RecommendConfig, limit int) []Candidate {
	return MealComplement(snap.Cart, snap.Available, cfg, limit)
}

// TrendingStrategy serves what the whole restaurant is ordering right now
type TrendingStrategy struct{}

func (TrendingStrategy) Tag() string { return TagTrending }

func (TrendingStrategy) Generate(snap *Snapshot, cfg config.RecommendConfig, limit int) []Candidate {
	return TrendingNow(snap.ActiveCounts, snap.Items, cfg.TrendingMinOrders, cfg.TrendingWindowMinutes, limit)
}

// CoOccurrence ranks the items most often ordered together with the
// given item. Pairs must clear all three thresholds; counterpart items
// missing from the catalog snapshot or marked unavailable are dropped
// silently.
func CoOccurrence(itemID int64, pairList []models.ItemPairFrequency, items map[int64]models.MenuItem, cfg config.RecommendConfig, limit int) []Candidate {
	qualified := make([]models.ItemPairFrequency, 0, len(pairList))
	for _, pair := range pairList {
		if pair.TimesTogether < int64(cfg.MinTimesTogether) {
			continue
		}
		if pair.Confidence < cfg.MinConfidence {
			continue
		}
		if pair.Lift < cfg.MinLift {
			continue
		}
		qualified = append(qualified, pair)
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].Confidence != qualified[j].Confidence {
			return qualified[i].Confidence > qualified[j].Confidence
		}
		return qualified[i].TimesTogether > qualified[j].TimesTogether
	})

	candidates := make([]Candidate, 0, limit)
	for _, pair := range qualified {
		other := pair.ItemA
		if other == itemID {
			other = pair.ItemB
		}

		item, ok := items[other]
		if !ok || !item.Available {
			continue
		}

		candidates = append(candidates, Candidate{
			ItemID:  item.ItemID,
			Name:    item.Name,
			Price:   item.Price,
			Reason:  fmt.Sprintf("%d customers bought both", pair.TimesTogether),
			Score:   pair.Confidence,
			RecType: TagCooccurrence,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates
}

// CategoryPopular ranks a category's items by a weighted blend of recent
// order counts and the all-time popularity score. The candidate slice is
// expected to be pre-filtered to available items of one category.
func CategoryPopular(items []models.MenuItem, counts7d, counts30d map[int64]int64, exclude map[int64]bool, cfg config.RecommendConfig, limit int) []Candidate {
	type scored struct {
		item  models.MenuItem
		score float64
	}

	ranked := make([]scored, 0, len(items))
	for _, item := range items {
		if exclude[item.ItemID] {
			continue
		}
		score := cfg.Weight7Days*float64(counts7d[item.ItemID]) +
			cfg.Weight30Days*float64(counts30d[item.ItemID]) +
			cfg.WeightAllTime*float64(item.PopularityScore)
		ranked = append(ranked, scored{item: item, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].item.ItemID < ranked[j].item.ItemID
	})

	candidates := make([]Candidate, 0, limit)
	for _, entry := range ranked {
		candidates = append(candidates, Candidate{
			ItemID:  entry.item.ItemID,
			Name:    entry.item.Name,
			Price:   entry.item.Price,
			Reason:  "Popular in this category",
			Score:   entry.score,
			RecType: TagCategoryPopular,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates
}

// MealComplement proposes what the cart is missing, by fixed rule
// priority: a drink first, then a dessert when a main course is present,
// then an affordable starter for small carts. Rules are evaluated in
// order until limit candidates are collected.
func MealComplement(cart []models.MenuItem, available []models.MenuItem, cfg config.RecommendConfig, limit int) []Candidate {
	inCart := make(map[int64]bool, len(cart))
	hasBeverage, hasMain, hasDessert, hasAppetizer := false, false, false, false
	for _, item := range cart {
		inCart[item.ItemID] = true
		switch {
		case IsBeverage(item.CategoryID):
			hasBeverage = true
		case IsDessert(item.CategoryID):
			hasDessert = true
		case IsAppetizer(item.CategoryID):
			hasAppetizer = true
		case IsMain(item.CategoryID):
			hasMain = true
		}
	}

	// available is sorted by popularity desc, so the first match per
	// rule is the top pick
	topMatch := func(match func(models.MenuItem) bool) *models.MenuItem {
		for i := range available {
			if inCart[available[i].ItemID] {
				continue
			}
			if match(available[i]) {
				return &available[i]
			}
		}
		return nil
	}

	candidates := make([]Candidate, 0, limit)
	add := func(item *models.MenuItem, reason string) {
		if item == nil || len(candidates) >= limit {
			return
		}
		candidates = append(candidates, Candidate{
			ItemID:  item.ItemID,
			Name:    item.Name,
			Price:   item.Price,
			Reason:  reason,
			Score:   float64(item.PopularityScore),
			RecType: TagComplement,
		})
	}

	if !hasBeverage {
		add(topMatch(func(m models.MenuItem) bool { return IsBeverage(m.CategoryID) }),
			"Add a drink to your meal")
	}
	if hasMain && !hasDessert {
		add(topMatch(func(m models.MenuItem) bool { return IsDessert(m.CategoryID) }),
			"Save room for dessert")
	}
	if len(cart) <= cfg.MaxCartForStarter && !hasAppetizer {
		add(topMatch(func(m models.MenuItem) bool {
			return IsAppetizer(m.CategoryID) && m.Price <= cfg.AppetizerPriceCap
		}), "A starter while you wait")
	}
	return candidates
}

// TrendingNow ranks items by active order count inside the trailing
// window. Items below minOrders are excluded; an item with exactly
// minOrders qualifies.
func TrendingNow(activeCounts map[int64]int64, items map[int64]models.MenuItem, minOrders int, windowMinutes int, limit int) []Candidate {
	type trending struct {
		itemID int64
		count  int64
	}

	ranked := make([]trending, 0, len(activeCounts))
	for itemID, count := range activeCounts {
		if count < int64(minOrders) {
			continue
		}
		item, ok := items[itemID]
		if !ok || !item.Available {
			continue
		}
		ranked = append(ranked, trending{itemID: itemID, count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].itemID < ranked[j].itemID
	})

	candidates := make([]Candidate, 0, limit)
	for _, entry := range ranked {
		item := items[entry.itemID]
		candidates = append(candidates, Candidate{
			ItemID:  item.ItemID,
			Name:    item.Name,
			Price:   item.Price,
			Reason:  fmt.Sprintf("%d orders in the last %d minutes", entry.count, windowMinutes),
			Score:   float64(entry.count),
			RecType: TagTrending,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates
}

// Category classification for the complement rules. Tenants name their
// categories freely; these substring checks cover the common namings and
// anything unmatched simply never triggers a complement rule.

// IsBeverage reports whether a category holds drinks
func IsBeverage(categoryID string) bool {
	return categoryContains(categoryID, "drink", "beverage", "coffee", "tea", "juice")
}

// IsDessert reports whether a category holds desserts
func IsDessert(categoryID string) bool {
	return categoryContains(categoryID, "dessert", "sweet", "cake")
}

// IsMain reports whether a category holds main courses
func IsMain(categoryID string) bool {
	return categoryContains(categoryID, "main", "entree", "grill", "pizza", "pasta", "burger")
}

// IsAppetizer reports whether a category holds starters
func IsAppetizer(categoryID string) bool {
	return categoryContains(categoryID, "appetizer", "starter", "side", "snack")
}

func categoryContains(categoryID string, keywords ...string) bool {
	lowered := strings.ToLower(categoryID)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
