package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/actuallystonmai/restaurant-recommender/internal/embedding"
	"github.com/actuallystonmai/restaurant-recommender/internal/model"
)

func intPtr(i int) *int { return &i }

type fakeStore struct {
	searches map[int64]bool
	refs     map[int64][]domain.RestaurantRecord
	city     map[int64][]domain.RestaurantRecord
	ids      []int64
	dbErr    error
}

func (f *fakeStore) GetSearch(_ context.Context, id int64) (*domain.Search, error) {
	if f.dbErr != nil {
		return nil, f.dbErr
	}
	if !f.searches[id] {
		return nil, domain.ErrSearchNotFound
	}
	return &domain.Search{ID: id, LocationName: "Springfield"}, nil
}

func (f *fakeStore) GetReferenceRestaurants(_ context.Context, id int64) ([]domain.RestaurantRecord, error) {
	return f.refs[id], nil
}

func (f *fakeStore) GetCityRestaurants(_ context.Context, id int64) ([]domain.RestaurantRecord, error) {
	return f.city[id], nil
}

func (f *fakeStore) CountRestaurants(_ context.Context, id int64) (int, int, error) {
	return len(f.refs[id]), len(f.city[id]), nil
}

func (f *fakeStore) GetSearchIDsPaginated(_ context.Context, page, limit int) ([]int64, error) {
	offset := (page - 1) * limit
	if offset >= len(f.ids) {
		return []int64{}, nil
	}
	end := min(offset+limit, len(f.ids))
	return f.ids[offset:end], nil
}

func (f *fakeStore) CountSearches(context.Context) (int, error) {
	return len(f.ids), nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]domain.RecommendationResult
	getErr  error
	cleared []int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]domain.RecommendationResult{}}
}

func cacheKey(id int64, k int) string { return fmt.Sprintf("%d:%d", id, k) }

func (c *memoryCache) Get(_ context.Context, id int64, k int) ([]domain.RecommendationResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	recs, ok := c.entries[cacheKey(id, k)]
	return recs, ok, nil
}

func (c *memoryCache) Set(_ context.Context, id int64, k int, recs []domain.RecommendationResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(id, k)] = recs
	return nil
}

func (c *memoryCache) ClearSearchCache(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, id)
	for k := range c.entries {
		delete(c.entries, k)
	}
	return nil
}

func newFixture() *fakeStore {
	return &fakeStore{
		searches: map[int64]bool{1: true, 2: true, 3: true},
		refs: map[int64][]domain.RestaurantRecord{
			1: {{ID: 1, Name: "Luigi's", Address: "1 Main St", Cuisine: "Italian", PriceLevel: intPtr(3),
				Description: "Cozy trattoria with handmade pasta"}},
			3: {{ID: 2, Name: "Taqueria Sol", Address: "2 Main St", Cuisine: "Mexican"}},
		},
		city: map[int64][]domain.RestaurantRecord{
			1: {
				{ID: 10, Name: "Mario's", Address: "5 Oak St", Cuisine: "Italian", PriceLevel: intPtr(3),
					Description: "Family trattoria serving fresh pasta", MenuHighlights: []string{"lasagna"}},
				{ID: 11, Name: "Sushi Go", Address: "7 Pine St", Cuisine: "Japanese", PriceLevel: intPtr(1)},
				{ID: 12, Name: "Burger Barn", Address: "8 Pine St", Cuisine: "American"},
				{ID: 13, Name: "Pho Corner", Address: "9 Pine St", Cuisine: "Vietnamese"},
				{ID: 14, Name: "Curry House", Address: "10 Pine St", Cuisine: "Indian"},
				{ID: 15, Name: "Taco Stop", Address: "11 Pine St", Cuisine: "Mexican",
					ReviewSummary: "Great al pastor"},
			},
		},
		ids: []int64{1, 2, 3, 99},
	}
}

func newTestService(t *testing.T, store Store, cache ResultCache) *Service {
	t.Helper()
	engine, err := model.NewEngine(embedding.NewHashingEncoder(128), model.DefaultOptions())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return NewService(store, cache, engine)
}

func TestGetRecommendations_CachesResults(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestService(t, newFixture(), cache)
	ctx := context.Background()

	first, err := svc.GetRecommendations(ctx, 1, 3)
	if err != nil {
		t.Fatalf("GetRecommendations failed: %v", err)
	}
	if first.CacheHit {
		t.Error("first call should miss the cache")
	}
	if len(first.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(first.Recommendations))
	}
	if first.Recommendations[0].Name != "Mario's" {
		t.Errorf("expected Mario's first, got %s", first.Recommendations[0].Name)
	}

	second, err := svc.GetRecommendations(ctx, 1, 3)
	if err != nil {
		t.Fatalf("GetRecommendations failed: %v", err)
	}
	if !second.CacheHit {
		t.Error("second call should hit the cache")
	}
	if len(second.Recommendations) != len(first.Recommendations) {
		t.Errorf("cached result differs: %d vs %d", len(second.Recommendations), len(first.Recommendations))
	}
}

func TestGetRecommendations_TopKClamped(t *testing.T) {
	svc := newTestService(t, newFixture(), nil)
	ctx := context.Background()

	res, err := svc.GetRecommendations(ctx, 1, 0)
	if err != nil {
		t.Fatalf("GetRecommendations failed: %v", err)
	}
	// default top_k 10 exceeds the six candidates
	if len(res.Recommendations) != 6 {
		t.Errorf("expected all 6 candidates, got %d", len(res.Recommendations))
	}

	svc = NewService(newFixture(), nil, svc.engine, WithTopKBounds(2, 4))
	res, err = svc.GetRecommendations(ctx, 1, 100)
	if err != nil {
		t.Fatalf("GetRecommendations failed: %v", err)
	}
	if len(res.Recommendations) != 4 {
		t.Errorf("expected top_k clamped to 4, got %d", len(res.Recommendations))
	}
}

func TestGetRecommendations_CacheErrorIgnored(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	svc := newTestService(t, newFixture(), cache)

	res, err := svc.GetRecommendations(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("cache errors should not fail the request: %v", err)
	}
	if res.CacheHit || len(res.Recommendations) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestGetRecommendations_Errors(t *testing.T) {
	svc := newTestService(t, newFixture(), nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		searchID int64
		want     error
	}{
		{"unknown search", 99, domain.ErrSearchNotFound},
		{"no reference restaurants", 2, domain.ErrNoReferenceRestaurants},
		{"no city restaurants", 3, domain.ErrNoCityRestaurants},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetRecommendations(ctx, tt.searchID, 5)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetRecommendations_StoreErrorWrapped(t *testing.T) {
	store := newFixture()
	store.dbErr = errors.New("connection refused")
	svc := newTestService(t, store, nil)

	_, err := svc.GetRecommendations(context.Background(), 1, 5)
	if err == nil || !errors.Is(err, store.dbErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if code, _ := CategorizeError(err); code != "internal_error" {
		t.Errorf("expected internal_error, got %s", code)
	}
}

func TestRecommend_AdHoc(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)
	fx := newFixture()

	recs, err := svc.Recommend(context.Background(), fx.refs[1], fx.city[1], 1)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 1 || recs[0].RestaurantID != 10 {
		t.Errorf("expected Mario's only, got %+v", recs)
	}
	if recs[0].BestMatch != "Luigi's" {
		t.Errorf("expected best match Luigi's, got %q", recs[0].BestMatch)
	}
}

func TestInvalidateSearch(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestService(t, newFixture(), cache)
	ctx := context.Background()

	if _, err := svc.GetRecommendations(ctx, 1, 2); err != nil {
		t.Fatalf("GetRecommendations failed: %v", err)
	}
	if err := svc.InvalidateSearch(ctx, 1); err != nil {
		t.Fatalf("InvalidateSearch failed: %v", err)
	}
	if len(cache.cleared) != 1 || cache.cleared[0] != 1 {
		t.Errorf("expected search 1 cleared, got %v", cache.cleared)
	}
	res, _ := svc.GetRecommendations(ctx, 1, 2)
	if res.CacheHit {
		t.Error("expected cache miss after invalidation")
	}
}

func TestGetBatchRecommendations(t *testing.T) {
	svc := newTestService(t, newFixture(), newMemoryCache())

	resp, err := svc.GetBatchRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("GetBatchRecommendations failed: %v", err)
	}
	if resp.TotalSearches != 4 || len(resp.Results) != 4 {
		t.Fatalf("expected 4 results of 4 searches, got %d of %d", len(resp.Results), resp.TotalSearches)
	}
	if resp.Summary.SuccessCount != 1 || resp.Summary.FailedCount != 3 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}

	wantErrors := map[int64]string{
		2:  "no_reference_restaurants",
		3:  "no_city_restaurants",
		99: "search_not_found",
	}
	for i, r := range resp.Results {
		if r.SearchID != newFixture().ids[i] {
			t.Errorf("result %d out of order: search %d", i, r.SearchID)
		}
		if code, ok := wantErrors[r.SearchID]; ok {
			if r.Status != domain.StatusFailed || r.Error != code {
				t.Errorf("search %d: expected %s, got %s/%s", r.SearchID, code, r.Status, r.Error)
			}
			continue
		}
		if r.Status != domain.StatusSuccess || len(r.Recommendations) == 0 {
			t.Errorf("search %d should succeed: %+v", r.SearchID, r)
		}
	}
}

func TestGetBatchRecommendations_PageBeyondEnd(t *testing.T) {
	svc := newTestService(t, newFixture(), nil)

	resp, err := svc.GetBatchRecommendations(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("GetBatchRecommendations failed: %v", err)
	}
	if len(resp.Results) != 0 || resp.TotalSearches != 4 {
		t.Errorf("expected empty page, got %+v", resp)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("wrapped: %w", domain.ErrSearchNotFound), "search_not_found"},
		{domain.ErrNoReferenceRestaurants, "no_reference_restaurants"},
		{domain.ErrNoCityRestaurants, "no_city_restaurants"},
		{context.DeadlineExceeded, "request_timeout"},
		{errors.New("boom"), "internal_error"},
	}
	for _, tt := range tests {
		if code, _ := CategorizeError(tt.err); code != tt.code {
			t.Errorf("CategorizeError(%v) = %s, want %s", tt.err, code, tt.code)
		}
	}
}

func TestExplain(t *testing.T) {
	svc := newTestService(t, newFixture(), nil)

	exp, err := svc.Explain(context.Background(), 1)
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if exp.DataStats.ReferenceRestaurants != 1 || exp.DataStats.CityRestaurants != 6 || exp.DataStats.TotalComparisons != 6 {
		t.Errorf("unexpected data stats: %+v", exp.DataStats)
	}
	if len(exp.Methodology.Features) != len(domain.FeatureNames) {
		t.Errorf("expected %d features, got %d", len(domain.FeatureNames), len(exp.Methodology.Features))
	}
	if exp.Methodology.Features[domain.FeatureMenu].Weight != 0.20 {
		t.Errorf("unexpected menu weight: %+v", exp.Methodology.Features[domain.FeatureMenu])
	}

	if _, err := svc.Explain(context.Background(), 99); !errors.Is(err, domain.ErrSearchNotFound) {
		t.Errorf("expected ErrSearchNotFound, got %v", err)
	}
}

func TestDebug(t *testing.T) {
	svc := newTestService(t, newFixture(), nil)
	ctx := context.Background()

	info, err := svc.Debug(ctx, 1, nil)
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	if len(info.ReferenceRestaurants) != 1 || !info.ReferenceRestaurants[0].HasEnrichment {
		t.Errorf("unexpected reference summaries: %+v", info.ReferenceRestaurants)
	}
	if info.CityRestaurants == nil {
		t.Fatal("expected city summary")
	}
	if info.CityRestaurants.TotalCount != 6 || len(info.CityRestaurants.Sample) != 5 {
		t.Errorf("unexpected city summary: total=%d sample=%d", info.CityRestaurants.TotalCount, len(info.CityRestaurants.Sample))
	}
	if info.CityRestaurants.WithEnrichment != 2 {
		t.Errorf("expected 2 enriched city restaurants, got %d", info.CityRestaurants.WithEnrichment)
	}

	id := int64(10)
	info, err = svc.Debug(ctx, 1, &id)
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	if info.CityRestaurants != nil || info.SpecificRestaurant == nil {
		t.Fatalf("expected only the specific restaurant, got %+v", info)
	}
	if info.SpecificRestaurant.Name != "Mario's" || len(info.SpecificRestaurant.MenuHighlights) != 1 {
		t.Errorf("unexpected specific restaurant: %+v", info.SpecificRestaurant)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 200); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("unexpected %q", got)
	}
}
