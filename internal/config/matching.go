package config

import (
	"sync"
	"time"
)

type MatchingConfig struct {
	CacheTTL          time.Duration
	CacheMaxEntries   int
	Concurrency       int
	PoolSize          int
	RefreshTimeout    time.Duration
	ApplicationLimit  int
	ApplicationWindow time.Duration
}

var (
	matchingConfig *MatchingConfig
	matchingOnce   sync.Once
)

func LoadMatchingConfig() *MatchingConfig {
	matchingOnce.Do(func() {
		matchingConfig = &MatchingConfig{
			CacheTTL:          getDuration("MATCH_CACHE_TTL", time.Minute),
			CacheMaxEntries:   getInt("MATCH_CACHE_MAX_ENTRIES", 1000),
			Concurrency:       getInt("MATCH_CONCURRENCY", 8),
			PoolSize:          getInt("MATCH_POOL_SIZE", 1000),
			RefreshTimeout:    getDuration("MATCH_REFRESH_TIMEOUT", 30*time.Second),
			ApplicationLimit:  getInt("APPLICATION_DAILY_LIMIT", 50),
			ApplicationWindow: getDuration("APPLICATION_WINDOW", 24*time.Hour),
		}
	})
	return matchingConfig
}
