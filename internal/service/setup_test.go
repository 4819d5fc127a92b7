package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/testhelpers"
)

// memoryCache is a versioned in-process RecommendationCache.
type memoryCache struct {
	mu       sync.Mutex
	catalog  int
	users    map[uuid.UUID]int
	entries  map[string][]recommend.Recommendation
	hits     int
	computes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{users: map[uuid.UUID]int{}, entries: map[string][]recommend.Recommendation{}}
}

func (c *memoryCache) Lookup(_ context.Context, userID uuid.UUID) ([]recommend.Recommendation, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := fmt.Sprintf("%s:%d:%d", userID, c.catalog, c.users[userID])
	recs, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.computes++
	}
	return recs, key, ok
}

func (c *memoryCache) Store(_ context.Context, key string, recs []recommend.Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = recs
}

func (c *memoryCache) InvalidateUser(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[userID]++
	return nil
}

func (c *memoryCache) InvalidateCatalog(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog++
	return nil
}

func (c *memoryCache) counts() (hits, computes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.computes
}

type testEnv struct {
	db              *gorm.DB
	fx              *testhelpers.Fixtures
	cache           *memoryCache
	ingredients     *service.IngredientService
	recipes         *service.RecipeService
	pantry          *service.PantryService
	restrictions    *service.RestrictionService
	recommendations *service.RecommendationService
	dashboard       *service.DashboardService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()
	cache := newMemoryCache()

	engine := recommend.NewEngine(service.NewGormRecommendationProvider(db), logger)
	recs := service.NewRecommendationService(engine, cache, metrics.New(), logger)

	return &testEnv{
		db:              db,
		fx:              testhelpers.NewFixtures(t, db),
		cache:           cache,
		ingredients:     service.NewIngredientService(db, recs, logger),
		recipes:         service.NewRecipeService(db, recs, logger),
		pantry:          service.NewPantryService(db, recs, logger),
		restrictions:    service.NewRestrictionService(db, recs, logger),
		recommendations: recs,
		dashboard:       service.NewDashboardService(db, recs),
	}
}
