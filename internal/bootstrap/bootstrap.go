// Package bootstrap assembles the service graph shared by the HTTP server and
// the matchctl CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/fadilmartias/talent-match/internal/config"
	"github.com/fadilmartias/talent-match/internal/database"
	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/fadilmartias/talent-match/internal/repository"
	"github.com/fadilmartias/talent-match/internal/service"
	"github.com/fadilmartias/talent-match/internal/usecase"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Container struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Provider service.EmbeddingProvider
	Store    *matching.Store

	Recommendations *usecase.RecommendationUsecase
	Applications    *usecase.ApplicationUsecase
	Profiles        *usecase.ProfileUsecase
}

func New(ctx context.Context, log *zap.Logger, migrate bool) (*Container, error) {
	appConfig := config.LoadAppConfig()
	matchingConfig := config.LoadMatchingConfig()

	db, err := database.Connect(config.LoadDBConfig(), appConfig)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	provider, err := service.NewEmbeddingProvider(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	log.Info("embedding provider ready", zap.String("model", provider.Model()), zap.Int("dimension", provider.Dimension()))

	rdb := database.ConnectRedis(ctx, config.LoadRedisConfig(), log)

	var counter service.RateCounter = service.NewMemoryRateCounter()
	if rdb != nil {
		counter = service.NewRedisRateCounter(rdb, "ratelimit:")
	}

	profileRepo := repository.NewProfileRepository(db)
	jobRepo := repository.NewJobRepository(db)

	store := matching.NewStore(repository.NewEmbeddingRepository(db), provider, log,
		matching.WithRefreshTimeout(matchingConfig.RefreshTimeout))
	ranker := matching.NewRanker(store, log, matchingConfig.Concurrency)
	cache := matching.NewCache(rdb, matchingConfig.CacheTTL, matchingConfig.CacheMaxEntries, log)

	return &Container{
		DB:       db,
		Redis:    rdb,
		Provider: provider,
		Store:    store,
		Recommendations: usecase.NewRecommendationUsecase(profileRepo, jobRepo, store, ranker, cache,
			matchingConfig.PoolSize, log),
		Applications: usecase.NewApplicationUsecase(
			repository.NewApplicationRepository(db), jobRepo, profileRepo,
			repository.NewNotificationRepository(db), counter,
			matchingConfig.ApplicationLimit, matchingConfig.ApplicationWindow, log),
		Profiles: usecase.NewProfileUsecase(profileRepo, log),
	}, nil
}

func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
