package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one counted attempt.
type Decision struct {
	Allowed   bool
	Remaining int
	Count     int
}

func decide(count, limit int) Decision {
	return Decision{
		Allowed:   count <= limit,
		Remaining: max(0, limit-count),
		Count:     count,
	}
}

// RateCounter counts attempts per key in a sliding window. The increment and
// the check happen atomically, so concurrent callers can never both take the
// last slot.
type RateCounter interface {
	IncrementAndCheck(ctx context.Context, key string, window time.Duration, limit int) (Decision, error)
}

// RedisRateCounter keeps one sorted set per key, scored by attempt time.
type RedisRateCounter struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRateCounter(rdb *redis.Client, prefix string) *RedisRateCounter {
	return &RedisRateCounter{rdb: rdb, prefix: prefix, now: time.Now}
}

func (c *RedisRateCounter) IncrementAndCheck(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	now := c.now()
	k := c.prefix + key
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	var card *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, k, "-inf", cutoff)
		pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: member})
		card = pipe.ZCard(ctx, k)
		pipe.PExpire(ctx, k, window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate counter %s: %w", key, err)
	}
	return decide(int(card.Val()), limit), nil
}

// MemoryRateCounter is the single-process fallback when Redis is not configured.
// Keys whose attempts have all left their window are swept at most once per
// sweepEvery.
type MemoryRateCounter struct {
	mu         sync.Mutex
	attempts   map[string]*attemptLog
	now        func() time.Time
	sweepEvery time.Duration
	lastSweep  time.Time
}

type attemptLog struct {
	at     []time.Time
	window time.Duration
}

func NewMemoryRateCounter() *MemoryRateCounter {
	return &MemoryRateCounter{
		attempts:   make(map[string]*attemptLog),
		now:        time.Now,
		sweepEvery: time.Minute,
	}
}

func (c *MemoryRateCounter) IncrementAndCheck(_ context.Context, key string, window time.Duration, limit int) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= c.sweepEvery {
		c.sweep(now)
		c.lastSweep = now
	}

	log, ok := c.attempts[key]
	if !ok {
		log = &attemptLog{}
		c.attempts[key] = log
	}
	log.window = window
	cutoff := now.Add(-window)
	kept := log.at[:0]
	for _, at := range log.at {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	log.at = append(kept, now)

	return decide(len(log.at), limit), nil
}

func (c *MemoryRateCounter) sweep(now time.Time) {
	for key, log := range c.attempts {
		if n := len(log.at); n == 0 || !log.at[n-1].After(now.Add(-log.window)) {
			delete(c.attempts, key)
		}
	}
}

// Len reports how many keys are currently tracked.
func (c *MemoryRateCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.attempts)
}
