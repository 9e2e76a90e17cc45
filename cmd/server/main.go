package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/talent-match/internal/bootstrap"
	"github.com/fadilmartias/talent-match/internal/config"
	"github.com/fadilmartias/talent-match/internal/domain/fiber/handler"
	applogger "github.com/fadilmartias/talent-match/internal/logger"
	"github.com/fadilmartias/talent-match/internal/middleware"
	"github.com/fadilmartias/talent-match/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	zlog, err := applogger.New(appConfig.LogJSON, appConfig.LogDebug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.New(ctx, zlog, true)
	if err != nil {
		zlog.Fatal("bootstrap failed", zap.Error(err))
	}
	defer deps.Close()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	handler.NewRecommendationHandler(deps.Recommendations).RegisterRoutes(app)
	handler.NewApplicationHandler(deps.Applications).RegisterRoutes(app)
	handler.NewProfileHandler(deps.Profiles).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := deps.Recommendations.Stats()
				zlog.Debug("runtime stats",
					zap.Int("goroutines", runtime.NumGoroutine()),
					zap.Int64("embedding_hits", stats.Store.Hits),
					zap.Int64("provider_calls", stats.Store.ProviderCalls),
					zap.Int64("cache_hits", stats.Cache.Hits))
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server running", zap.String("port", appConfig.Port), zap.String("env", appConfig.Env))
	if err := app.Listen(appConfig.Port); err != nil {
		zlog.Fatal("listen failed", zap.Error(err))
	}
}
