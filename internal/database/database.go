package database

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/talent-match/internal/config"
	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the Postgres pool. Unique violations surface as
// gorm.ErrDuplicatedKey.
func Connect(dbConfig *config.DBConfig, appConfig *config.AppConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if appConfig.LogDebug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

// Migrate enables pgvector and brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	err := db.AutoMigrate(
		&model.Profile{},
		&model.Job{},
		&model.EmbeddingRecord{},
		&model.Application{},
		&model.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// ConnectRedis returns nil when REDIS_URL is unset or unreachable; callers
// fall back to in-process state.
func ConnectRedis(ctx context.Context, cfg *config.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Warn("invalid REDIS_URL, using in-memory state", zap.Error(err))
		return nil
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, using in-memory state", zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	return rdb
}
