package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func buildKey(searchID int64, topK int) string {
	return fmt.Sprintf("rec:search:%d:k:%d", searchID, topK)
}

func searchPattern(searchID int64) string {
	return fmt.Sprintf("rec:search:%d:k:*", searchID)
}

// Get recommendations from cache. found is false on a miss.
func (c *Cache) Get(ctx context.Context, searchID int64, topK int) ([]domain.RecommendationResult, bool, error) {
	key := buildKey(searchID, topK)
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	recs, err := decode(val)
	if err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}

	return recs, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, searchID int64, topK int, recs []domain.RecommendationResult) error {
	key := buildKey(searchID, topK)
	val, err := encode(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}

	return nil
}

// Clear search cache: used when the restaurants of a search change
func (c *Cache) ClearSearchCache(ctx context.Context, searchID int64) error {
	iter := c.client.Scan(ctx, 0, searchPattern(searchID), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func encode(recs []domain.RecommendationResult) ([]byte, error) {
	if recs == nil {
		recs = []domain.RecommendationResult{}
	}
	return json.Marshal(recs)
}

func decode(val []byte) ([]domain.RecommendationResult, error) {
	var recs []domain.RecommendationResult
	if err := json.Unmarshal(val, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
