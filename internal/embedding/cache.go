package embedding

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// Encoder is the subset of behaviour CachedEncoder needs from its backend.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelID() string
}

type cacheEntry struct {
	key       string
	vec       []float32
	expiresAt time.Time
}

// CachedEncoder memoizes vectors per text in a bounded LRU with TTL.
// The clock is injected so expiry can be tested without sleeping.
type CachedEncoder struct {
	inner    Encoder
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu     sync.Mutex
	items  map[string]*list.Element
	order  *list.List // front = most recently used
	hits   int64
	misses int64
}

func NewCachedEncoder(inner Encoder, capacity int, ttl time.Duration, now func() time.Time) *CachedEncoder {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &CachedEncoder{
		inner:    inner,
		capacity: capacity,
		ttl:      ttl,
		now:      now,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *CachedEncoder) Dimension() int  { return c.inner.Dimension() }
func (c *CachedEncoder) ModelID() string { return c.inner.ModelID() }

// Encode returns cached vectors where possible and asks the backend only for
// the distinct texts it has not seen. The lock is not held while the backend
// runs.
func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	pending := make(map[string][]int)
	var missing []string

	c.mu.Lock()
	for i, t := range texts {
		if vec, ok := c.lookup(t); ok {
			out[i] = vec
			c.hits++
			continue
		}
		c.misses++
		if _, seen := pending[t]; !seen {
			missing = append(missing, t)
		}
		pending[t] = append(pending[t], i)
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("backend returned %d vectors for %d texts", len(vecs), len(missing))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for j, t := range missing {
		c.store(t, vecs[j])
		for _, i := range pending[t] {
			out[i] = cloneVector(vecs[j])
		}
	}
	return out, nil
}

// Stats reports cache hits and misses counted per text.
func (c *CachedEncoder) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len reports the number of live entries, expired ones included until they
// are touched or evicted.
func (c *CachedEncoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// lookup must be called with mu held.
func (c *CachedEncoder) lookup(key string) ([]float32, bool) {
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if !c.now().Before(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return cloneVector(entry.vec), true
}

// store must be called with mu held.
func (c *CachedEncoder) store(key string, vec []float32) {
	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.vec = cloneVector(vec)
		entry.expiresAt = expires
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, vec: cloneVector(vec), expiresAt: expires})
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
