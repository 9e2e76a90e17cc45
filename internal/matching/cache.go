package matching

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache keeps ranked results for a short TTL: L1 in memory, optional L2 in
// Redis so that several instances share warm rankings.
type Cache struct {
	l1         sync.Map // key -> *cacheEntry
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int
	logger     *zap.Logger
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	results   []MatchResult
	expiresAt time.Time
}

type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewCache returns a cache; rdb may be nil to disable L2. A non-positive ttl
// disables caching altogether.
func NewCache(rdb *redis.Client, ttl time.Duration, maxEntries int, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		rdb:        rdb,
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger.Named("match_cache"),
		now:        time.Now,
	}
}

// CacheKey builds a deterministic key from parts.
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("match:%x", hash[:12])
}

func (c *Cache) Get(ctx context.Context, key string) ([]MatchResult, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if c.now().Before(entry.expiresAt) {
			c.hits.Add(1)
			return entry.results, true
		}
		c.l1.Delete(key)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var results []MatchResult
			if json.Unmarshal(data, &results) == nil {
				c.hits.Add(1)
				c.l1.Store(key, &cacheEntry{results: results, expiresAt: c.now().Add(c.ttl)})
				return results, true
			}
		} else if err != redis.Nil {
			c.logger.Debug("L2 get failed", zap.Error(err))
		}
	}

	c.misses.Add(1)
	return nil, false
}

func (c *Cache) Set(ctx context.Context, key string, results []MatchResult) {
	if c == nil || c.ttl <= 0 {
		return
	}

	c.evictIfNeeded()
	c.l1.Store(key, &cacheEntry{results: results, expiresAt: c.now().Add(c.ttl)})

	if c.rdb != nil {
		data, err := json.Marshal(results)
		if err != nil {
			return
		}
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("L2 set failed", zap.Error(err))
		}
	}
}

func (c *Cache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// evictIfNeeded drops expired entries first, then the ones closest to expiry,
// until L1 is below maxEntries.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := c.now()
	c.l1.Range(func(key, val any) bool {
		if entry := val.(*cacheEntry); now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		var oldestAt time.Time
		c.l1.Range(func(key, val any) bool {
			entry := val.(*cacheEntry)
			if oldestKey == nil || entry.expiresAt.Before(oldestAt) {
				oldestKey, oldestAt = key, entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}
