package recommend

import (
	"testing"

	"qrmenu-reco/config"
	models "qrmenu-reco/database/models_pkg"
)

func testConfig() config.RecommendConfig {
	return config.RecommendConfig{
		MinConfidence:     0.15,
		MinLift:           1.0,
		MinTimesTogether:  2,
		Weight7Days:       3.0,
		Weight30Days:      1.0,
		WeightAllTime:     0.5,
		AppetizerPriceCap: 8.0,
		MaxCartForStarter: 2,
		TrendingMinOrders: 3,
	}
}

func availableItem(itemID int64, name, category string, price float64) models.MenuItem {
	return models.MenuItem{
		ItemID:     itemID,
		Name:       name,
		CategoryID: category,
		Price:      price,
		Available:  true,
	}
}

func TestCoOccurrenceThresholdFiltering(t *testing.T) {
	cfg := testConfig()
	cfg.MinConfidence = 0.2
	cfg.MinLift = 1.2
	cfg.MinTimesTogether = 3

	items := map[int64]models.MenuItem{
		20: availableItem(20, "Fries", "sides", 3.5),
		30: availableItem(30, "Cola", "drinks", 2.0),
	}

	tests := []struct {
		name     string
		pair     models.ItemPairFrequency
		expected int
	}{
		{
			// High confidence cannot rescue a pair below the count floor
			name:     "Below Times Together",
			pair:     models.ItemPairFrequency{ItemA: 10, ItemB: 20, TimesTogether: 2, Confidence: 0.95, Lift: 2.0},
			expected: 0,
		},
		{
			name:     "Below Confidence",
			pair:     models.ItemPairFrequency{ItemA: 10, ItemB: 20, TimesTogether: 5, Confidence: 0.1, Lift: 2.0},
			expected: 0,
		},
		{
			name:     "Below Lift",
			pair:     models.ItemPairFrequency{ItemA: 10, ItemB: 20, TimesTogether: 5, Confidence: 0.5, Lift: 0.9},
			expected: 0,
		},
		{
			name:     "All Thresholds Met",
			pair:     models.ItemPairFrequency{ItemA: 10, ItemB: 20, TimesTogether: 3, Confidence: 0.2, Lift: 1.2},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := CoOccurrence(10, []models.ItemPairFrequency{tt.pair}, items, cfg, 5)
			if len(candidates) != tt.expected {
				t.Errorf("expected %d candidates, got %d", tt.expected, len(candidates))
			}
		})
	}
}

func TestCoOccurrenceOrderingAndAvailability(t *testing.T) {
	cfg := testConfig()

	pairList := []models.ItemPairFrequency{
		{ItemA: 10, ItemB: 20, TimesTogether: 4, Confidence: 0.4, Lift: 1.5},
		{ItemA: 10, ItemB: 30, TimesTogether: 8, Confidence: 0.6, Lift: 1.5},
		{ItemA: 10, ItemB: 40, TimesTogether: 9, Confidence: 0.4, Lift: 1.5},
		{ItemA: 5, ItemB: 10, TimesTogether: 7, Confidence: 0.7, Lift: 1.5},
	}
	items := map[int64]models.MenuItem{
		20: availableItem(20, "Fries", "sides", 3.5),
		30: availableItem(30, "Cola", "drinks", 2.0),
		40: availableItem(40, "Salad", "sides", 5.0),
	}
	// Item 5 is missing from the catalog snapshot, its pair must vanish

	candidates := CoOccurrence(10, pairList, items, cfg, 5)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	// 30 leads on confidence, then 40 beats 20 on times_together
	expectedOrder := []int64{30, 40, 20}
	for i, itemID := range expectedOrder {
		if candidates[i].ItemID != itemID {
			t.Errorf("position %d: expected item %d, got %d", i, itemID, candidates[i].ItemID)
		}
	}

	if candidates[0].RecType != TagCooccurrence {
		t.Errorf("expected rec type %s, got %s", TagCooccurrence, candidates[0].RecType)
	}
	if candidates[0].Reason != "8 customers bought both" {
		t.Errorf("unexpected reason: %s", candidates[0].Reason)
	}

	unavailable := items[30]
	unavailable.Available = false
	items[30] = unavailable
	candidates = CoOccurrence(10, pairList, items, cfg, 5)
	for _, c := range candidates {
		if c.ItemID == 30 {
			t.Error("unavailable item 30 must be excluded")
		}
	}
}

func TestCategoryPopularWeighting(t *testing.T) {
	cfg := testConfig()

	items := []models.MenuItem{
		availableItem(1, "Burger", "mains", 10),
		availableItem(2, "Pizza", "mains", 12),
		availableItem(3, "Pasta", "mains", 11),
	}
	counts7d := map[int64]int64{1: 2, 2: 5}
	counts30d := map[int64]int64{1: 20, 2: 8, 3: 1}
	// Scores: item 1 = 3*2+1*20 = 26, item 2 = 3*5+1*8 = 23, item 3 = 1

	candidates := CategoryPopular(items, counts7d, counts30d, map[int64]bool{}, cfg, 3)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].ItemID != 1 || candidates[1].ItemID != 2 || candidates[2].ItemID != 3 {
		t.Errorf("unexpected order: %d, %d, %d",
			candidates[0].ItemID, candidates[1].ItemID, candidates[2].ItemID)
	}
	if candidates[0].Score != 26 {
		t.Errorf("expected score 26, got %f", candidates[0].Score)
	}

	excluded := CategoryPopular(items, counts7d, counts30d, map[int64]bool{1: true}, cfg, 3)
	if len(excluded) != 2 || excluded[0].ItemID != 2 {
		t.Errorf("exclusion not applied: got %d candidates", len(excluded))
	}
}

func TestMealComplementRules(t *testing.T) {
	cfg := testConfig()

	available := []models.MenuItem{
		{ItemID: 1, Name: "Cola", CategoryID: "drinks", Price: 2.5, Available: true, PopularityScore: 90},
		{ItemID: 2, Name: "Tiramisu", CategoryID: "desserts", Price: 6.0, Available: true, PopularityScore: 80},
		{ItemID: 3, Name: "Bruschetta", CategoryID: "starters", Price: 5.5, Available: true, PopularityScore: 70},
		{ItemID: 4, Name: "Truffle Starter", CategoryID: "starters", Price: 15.0, Available: true, PopularityScore: 95},
		{ItemID: 5, Name: "Burger", CategoryID: "mains", Price: 11.0, Available: true, PopularityScore: 85},
	}

	tests := []struct {
		name     string
		cart     []models.MenuItem
		expected []int64
	}{
		{
			// No drink in cart: drink rule fires first, then dessert
			// (main present), then affordable starter (cart size 1)
			name:     "Main Only",
			cart:     []models.MenuItem{availableItem(5, "Burger", "mains", 11)},
			expected: []int64{1, 2, 3},
		},
		{
			name: "Main And Drink",
			cart: []models.MenuItem{
				availableItem(5, "Burger", "mains", 11),
				availableItem(1, "Cola", "drinks", 2.5),
			},
			expected: []int64{2, 3},
		},
		{
			name: "Full Meal",
			cart: []models.MenuItem{
				availableItem(5, "Burger", "mains", 11),
				availableItem(1, "Cola", "drinks", 2.5),
				availableItem(2, "Tiramisu", "desserts", 6),
				availableItem(3, "Bruschetta", "starters", 5.5),
			},
			expected: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := MealComplement(tt.cart, available, cfg, 3)
			if len(candidates) != len(tt.expected) {
				t.Fatalf("expected %d candidates, got %d", len(tt.expected), len(candidates))
			}
			for i, itemID := range tt.expected {
				if candidates[i].ItemID != itemID {
					t.Errorf("position %d: expected item %d, got %d", i, itemID, candidates[i].ItemID)
				}
			}
		})
	}
}

func TestMealComplementStarterPriceCap(t *testing.T) {
	cfg := testConfig()

	// Only starter on the menu is above the price cap
	available := []models.MenuItem{
		{ItemID: 4, Name: "Truffle Starter", CategoryID: "starters", Price: 15.0, Available: true, PopularityScore: 95},
	}
	cart := []models.MenuItem{
		availableItem(5, "Burger", "mains", 11),
		availableItem(1, "Cola", "drinks", 2.5),
		availableItem(2, "Tiramisu", "desserts", 6),
	}

	candidates := MealComplement(cart, available, cfg, 3)
	if len(candidates) != 0 {
		t.Errorf("starter above price cap must not be proposed, got %d candidates", len(candidates))
	}
}

func TestStrategyTags(t *testing.T) {
	strategies := []Strategy{
		CoOccurrenceStrategy{},
		CategoryPopularStrategy{},
		MealComplementStrategy{},
		TrendingStrategy{},
	}
	expected := []string{TagCooccurrence, TagCategoryPopular, TagComplement, TagTrending}

	for i, strategy := range strategies {
		if strategy.Tag() != expected[i] {
			t.Errorf("expected tag %s, got %s", expected[i], strategy.Tag())
		}
	}
}

func TestStrategyGenerateTagsCandidates(t *testing.T) {
	cfg := testConfig()
	cfg.TrendingWindowMinutes = 60

	snap := &Snapshot{
		ActiveCounts: map[int64]int64{1: 5},
		Items:        map[int64]models.MenuItem{1: availableItem(1, "Burger", "mains", 11)},
	}

	var strategy Strategy = TrendingStrategy{}
	candidates := strategy.Generate(snap, cfg, 3)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].RecType != strategy.Tag() {
		t.Errorf("candidate tag %s does not match strategy tag %s", candidates[0].RecType, strategy.Tag())
	}
}

func TestTrendingBoundary(t *testing.T) {
	cfg := testConfig()

	items := map[int64]models.MenuItem{
		1: availableItem(1, "Burger", "mains", 11),
		2: availableItem(2, "Pizza", "mains", 12),
		3: availableItem(3, "Pasta", "mains", 10),
	}
	// minOrders = 3: exactly 2 is out, exactly 3 is in
	activeCounts := map[int64]int64{1: 2, 2: 3, 3: 7}

	candidates := TrendingNow(activeCounts, items, cfg.TrendingMinOrders, 60, 5)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ItemID != 3 || candidates[1].ItemID != 2 {
		t.Errorf("unexpected order: %d, %d", candidates[0].ItemID, candidates[1].ItemID)
	}
	if candidates[0].Reason != "7 orders in the last 60 minutes" {
		t.Errorf("unexpected reason: %s", candidates[0].Reason)
	}
}
