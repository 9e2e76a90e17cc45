package config

import (
	"os"
	"sync"
)

// RedisConfig is optional. Without REDIS_URL the rate-limit counter and the
// match cache stay in process memory.
type RedisConfig struct {
	URL string
}

var (
	redisConfig *RedisConfig
	redisOnce   sync.Once
)

func LoadRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		redisConfig = &RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		}
	})
	return redisConfig
}
