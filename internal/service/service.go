package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/actuallystonmai/restaurant-recommender/internal/logging"
	"github.com/actuallystonmai/restaurant-recommender/internal/metrics"
	"github.com/actuallystonmai/restaurant-recommender/internal/model"
	"github.com/rs/zerolog"
)

const (
	defaultTopK      = 10
	maxTopK          = 50
	batchConcurrency = 10
	batchTopK        = 10
)

// Store is the persistence the service reads restaurants from.
type Store interface {
	GetSearch(ctx context.Context, searchID int64) (*domain.Search, error)
	GetReferenceRestaurants(ctx context.Context, searchID int64) ([]domain.RestaurantRecord, error)
	GetCityRestaurants(ctx context.Context, searchID int64) ([]domain.RestaurantRecord, error)
	CountRestaurants(ctx context.Context, searchID int64) (reference, city int, err error)
	GetSearchIDsPaginated(ctx context.Context, page, limit int) ([]int64, error)
	CountSearches(ctx context.Context) (int, error)
}

// ResultCache stores ranked results per search and top_k.
type ResultCache interface {
	Get(ctx context.Context, searchID int64, topK int) ([]domain.RecommendationResult, bool, error)
	Set(ctx context.Context, searchID int64, topK int, recs []domain.RecommendationResult) error
	ClearSearchCache(ctx context.Context, searchID int64) error
}

type Service struct {
	store       Store
	cache       ResultCache
	engine      *model.Engine
	modelID     string
	defaultTopK int
	maxTopK     int
	log         zerolog.Logger
}

type Option func(*Service)

// WithTopKBounds overrides the default and maximum top_k.
func WithTopKBounds(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultTopK = def
		}
		if max >= s.defaultTopK {
			s.maxTopK = max
		}
	}
}

// WithModelID names the embedding model in explanations.
func WithModelID(id string) Option {
	return func(s *Service) { s.modelID = id }
}

func NewService(store Store, cache ResultCache, engine *model.Engine, opts ...Option) *Service {
	s := &Service{
		store:       store,
		cache:       cache,
		engine:      engine,
		modelID:     "hashing",
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
		log:         logging.With("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		return s.defaultTopK
	}
	if topK > s.maxTopK {
		return s.maxTopK
	}
	return topK
}

// GetRecommendations ranks the city restaurants of a search against the
// restaurants the user picked for it. Results are cached per top_k.
func (s *Service) GetRecommendations(ctx context.Context, searchID int64, topK int) (result *domain.RecommendationSet, err error) {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "failed"
		}
		metrics.RecommendRequests.WithLabelValues(status).Inc()
	}()

	topK = s.clampTopK(topK)

	// Check cache
	if s.cache != nil {
		cached, found, cacheErr := s.cache.Get(ctx, searchID, topK)
		if cacheErr != nil {
			s.log.Warn().Err(cacheErr).Int64("search_id", searchID).Msg("cache get failed")
		}
		if found {
			metrics.RecommendCacheHits.Inc()
			return &domain.RecommendationSet{Recommendations: cached, CacheHit: true}, nil
		}
	}

	// Cache miss -> generate recommendations
	recs, err := s.generateRecommendations(ctx, searchID, topK)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, searchID, topK, recs); cacheErr != nil {
			s.log.Warn().Err(cacheErr).Int64("search_id", searchID).Msg("cache set failed")
		}
	}

	return &domain.RecommendationSet{Recommendations: recs, CacheHit: false}, nil
}

func (s *Service) generateRecommendations(ctx context.Context, searchID int64, topK int) ([]domain.RecommendationResult, error) {
	refs, cands, err := s.loadRestaurants(ctx, searchID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("search_id", searchID).Int("references", len(refs)).Int("candidates", len(cands)).Msg("scoring search")
	return s.engine.Recommend(ctx, refs, cands, topK)
}

func (s *Service) loadRestaurants(ctx context.Context, searchID int64) ([]domain.RestaurantRecord, []domain.RestaurantRecord, error) {
	if _, err := s.store.GetSearch(ctx, searchID); err != nil {
		if errors.Is(err, domain.ErrSearchNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("fetch search: %w", err)
	}

	refs, err := s.store.GetReferenceRestaurants(ctx, searchID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch reference restaurants: %w", err)
	}
	if len(refs) == 0 {
		return nil, nil, domain.ErrNoReferenceRestaurants
	}

	cands, err := s.store.GetCityRestaurants(ctx, searchID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch city restaurants: %w", err)
	}
	if len(cands) == 0 {
		return nil, nil, domain.ErrNoCityRestaurants
	}
	return refs, cands, nil
}

// Recommend scores caller-supplied restaurants without touching storage or
// the cache.
func (s *Service) Recommend(ctx context.Context, refs, cands []domain.RestaurantRecord, topK int) ([]domain.RecommendationResult, error) {
	return s.engine.Recommend(ctx, refs, cands, s.clampTopK(topK))
}

// InvalidateSearch drops cached results of a search.
func (s *Service) InvalidateSearch(ctx context.Context, searchID int64) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.ClearSearchCache(ctx, searchID); err != nil {
		return fmt.Errorf("clear cache for search %d: %w", searchID, err)
	}
	return nil
}

func (s *Service) GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	// Fetch paginated search IDs
	searchIDs, err := s.store.GetSearchIDsPaginated(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch search ids: %w", err)
	}

	totalSearches, err := s.store.CountSearches(ctx)
	if err != nil {
		return nil, fmt.Errorf("count searches: %w", err)
	}

	// Process searches concurrently with bounded worker pool
	results := make([]domain.BatchSearchResult, len(searchIDs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency) // semaphore

	for i, searchID := range searchIDs {
		wg.Add(1)
		go func(idx int, sid int64) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = s.processSearchForBatch(ctx, sid)
		}(i, searchID)
	}
	wg.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Page:          page,
		Limit:         limit,
		TotalSearches: totalSearches,
		Results:       results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Generates recommendations for a single search, capturing errors.
func (s *Service) processSearchForBatch(ctx context.Context, searchID int64) domain.BatchSearchResult {
	result, err := s.GetRecommendations(ctx, searchID, batchTopK)
	if err != nil {
		s.log.Warn().Err(err).Int64("search_id", searchID).Msg("batch: search failed")
		code, msg := CategorizeError(err)
		return domain.BatchSearchResult{
			SearchID: searchID,
			Status:   domain.StatusFailed,
			Error:    code,
			Message:  msg,
		}
	}

	return domain.BatchSearchResult{
		SearchID:        searchID,
		Recommendations: result.Recommendations,
		Status:          domain.StatusSuccess,
	}
}

// CategorizeError maps an error to a stable code and message.
func CategorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrSearchNotFound):
		return "search_not_found", "search not found"
	case errors.Is(err, domain.ErrNoReferenceRestaurants):
		return "no_reference_restaurants", "no user restaurants found for search"
	case errors.Is(err, domain.ErrNoCityRestaurants):
		return "no_city_restaurants", "no city restaurants found for search"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "request_timeout", "request timed out"
	}
	return "internal_error", "an unexpected error occurred"
}
