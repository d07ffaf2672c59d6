package recommend

import (
	"context"
	"fmt"
	"log"
	"time"

	"qrmenu-reco/cache"
	"qrmenu-reco/config"
	"qrmenu-reco/database/catalog"
	models "qrmenu-reco/database/models_pkg"
	"qrmenu-reco/database/orders"
	"qrmenu-reco/database/pairs"
	"qrmenu-reco/database/tenants"
)

// Engine resolves a serving request to a strategy, feeds it the
// materialized snapshot data and caches hot results in Redis. It only
// reads; all counter and score writes happen elsewhere.
type Engine struct {
	pairs   *pairs.Repository
	catalog *catalog.Repository
	orders  *orders.Repository
	tenants *tenants.Repository
	cache   *cache.RedisClient
}

// NewEngine creates a new recommendation engine
func NewEngine(pairRepo *pairs.Repository, catalogRepo *catalog.Repository, orderRepo *orders.Repository, tenantRepo *tenants.Repository, redisCache *cache.RedisClient) *Engine {
	return &Engine{
		pairs:   pairRepo,
		catalog: catalogRepo,
		orders:  orderRepo,
		tenants: tenantRepo,
		cache:   redisCache,
	}
}

// Recommend dispatches the request to a strategy by its context: a
// source item, a category, a cart, or nothing (trending fallback)
func (e *Engine) Recommend(ctx context.Context, req Request) ([]Candidate, error) {
	cfg, err := e.tenants.Resolve(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("Recommend: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}

	switch {
	case req.ItemID != 0:
		return e.forItem(ctx, req.TenantID, req.ItemID, cfg, limit)
	case req.CategoryID != "":
		return e.forCategory(req.TenantID, req.CategoryID, nil, cfg, limit)
	case len(req.CartItemIDs) > 0:
		return e.forCart(req.TenantID, req.CartItemIDs, cfg, limit)
	default:
		return e.trending(ctx, req.TenantID, cfg, limit)
	}
}

// forItem serves the co-occurrence strategy with a category-popular
// fallback when the item has no qualifying pairs yet
func (e *Engine) forItem(ctx context.Context, tenantID string, itemID int64, cfg config.RecommendConfig, limit int) ([]Candidate, error) {
	cacheKey := fmt.Sprintf("reco:%s:item:%d:%d", tenantID, itemID, limit)
	if cached := e.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	pairList, err := e.pairs.GetPairsFor(tenantID, itemID)
	if err != nil {
		return nil, fmt.Errorf("forItem: %w", err)
	}

	counterparts := make([]int64, 0, len(pairList))
	for _, pair := range pairList {
		other := pair.ItemA
		if other == itemID {
			other = pair.ItemB
		}
		counterparts = append(counterparts, other)
	}

	items, err := e.catalog.GetItems(tenantID, counterparts)
	if err != nil {
		return nil, fmt.Errorf("forItem: %w", err)
	}

	snap := &Snapshot{SourceItemID: itemID, Pairs: pairList, Items: items}
	candidates := CoOccurrenceStrategy{}.Generate(snap, cfg, limit)

	// Cold-start fallback: nothing co-ordered yet, lean on the item's
	// own category
	if len(candidates) == 0 {
		source, err := e.catalog.GetItem(tenantID, itemID)
		if err != nil {
			return nil, fmt.Errorf("forItem fallback: %w", err)
		}
		if source != nil && source.CategoryID != "" {
			candidates, err = e.forCategory(tenantID, source.CategoryID, map[int64]bool{itemID: true}, cfg, limit)
			if err != nil {
				return nil, err
			}
		}
	}

	e.toCache(ctx, cacheKey, candidates, cfg.CacheTTLSeconds)
	return candidates, nil
}

// forCategory serves the weighted category popularity strategy
func (e *Engine) forCategory(tenantID, categoryID string, exclude map[int64]bool, cfg config.RecommendConfig, limit int) ([]Candidate, error) {
	items, err := e.catalog.AvailableByCategory(tenantID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("forCategory: %w", err)
	}
	if len(items) == 0 {
		return []Candidate{}, nil
	}

	now := time.Now()
	counts7d, err := e.orders.CompletedOrderCountsSince(tenantID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("forCategory: %w", err)
	}
	counts30d, err := e.orders.CompletedOrderCountsSince(tenantID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("forCategory: %w", err)
	}

	if exclude == nil {
		exclude = map[int64]bool{}
	}
	snap := &Snapshot{CategoryItems: items, Counts7d: counts7d, Counts30d: counts30d, Exclude: exclude}
	return CategoryPopularStrategy{}.Generate(snap, cfg, limit), nil
}

// forCart serves the meal complement rules over the resolved cart
func (e *Engine) forCart(tenantID string, cartItemIDs []int64, cfg config.RecommendConfig, limit int) ([]Candidate, error) {
	cartByID, err := e.catalog.GetItems(tenantID, cartItemIDs)
	if err != nil {
		return nil, fmt.Errorf("forCart: %w", err)
	}

	// Unknown cart items are dropped, the rest of the cart still counts
	cart := make([]models.MenuItem, 0, len(cartItemIDs))
	for _, itemID := range cartItemIDs {
		if item, ok := cartByID[itemID]; ok {
			cart = append(cart, item)
		}
	}

	available, err := e.catalog.AvailableItems(tenantID)
	if err != nil {
		return nil, fmt.Errorf("forCart: %w", err)
	}

	snap := &Snapshot{Cart: cart, Available: available}
	return MealComplementStrategy{}.Generate(snap, cfg, limit), nil
}

// trending serves the active-order trending strategy
func (e *Engine) trending(ctx context.Context, tenantID string, cfg config.RecommendConfig, limit int) ([]Candidate, error) {
	cacheKey := fmt.Sprintf("reco:%s:trending:%d", tenantID, limit)
	if cached := e.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	since := time.Now().Add(-time.Duration(cfg.TrendingWindowMinutes) * time.Minute)
	activeCounts, err := e.orders.ActiveOrderCountsSince(tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}

	itemIDs := make([]int64, 0, len(activeCounts))
	for itemID := range activeCounts {
		itemIDs = append(itemIDs, itemID)
	}
	items, err := e.catalog.GetItems(tenantID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}

	snap := &Snapshot{ActiveCounts: activeCounts, Items: items}
	candidates := TrendingStrategy{}.Generate(snap, cfg, limit)
	e.toCache(ctx, cacheKey, candidates, cfg.CacheTTLSeconds)
	return candidates, nil
}

func (e *Engine) fromCache(ctx context.Context, key string) []Candidate {
	if e.cache == nil {
		return nil
	}
	var candidates []Candidate
	if err := e.cache.Get(ctx, key, &candidates); err != nil {
		return nil
	}
	return candidates
}

func (e *Engine) toCache(ctx context.Context, key string, candidates []Candidate, ttlSeconds int) {
	if e.cache == nil || ttlSeconds <= 0 {
		return
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	if err := e.cache.Set(ctx, key, candidates, ttl); err != nil {
		log.Printf("⚠️  Cache write failed for %s: %v", key, err)
	}
}
