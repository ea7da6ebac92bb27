package main // Entry point package

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medialog/medialog/internal/config"
	"github.com/medialog/medialog/internal/database"
	"github.com/medialog/medialog/internal/handler"
	appmw "github.com/medialog/medialog/internal/middleware"
	"github.com/medialog/medialog/internal/queue"
	"github.com/medialog/medialog/internal/repository"
	"github.com/medialog/medialog/internal/router"
	queue_publisher "github.com/medialog/medialog/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()

	// Load .env when present; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, database.Pool{
		MaxOpen:     cfg.DBMaxOpen,
		MaxIdle:     cfg.DBMaxIdle,
		MaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.InitSchema(ctx, db); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("schema initialization failed")
	}
	if cfg.DemoMode {
		if err := database.EnsureDemoUser(ctx, db, cfg.DemoUserID); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("demo user setup failed")
		}
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	media := repository.NewMediaRepo(db)
	genres := repository.NewGenreRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	mediaHandler := handler.NewMediaHandler(media, genres)
	mediaHandler.PublishWatched = queue_publisher.PublishMediaWatched
	metaHandler := handler.NewMetaHandler(genres)

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable, cache and rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true

	// Route-group middleware. The limiter sits behind the JWT guard on
	// media routes so per-user rate keys see the authenticated id; on
	// auth and meta routes it runs anonymously and keys by client IP.
	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, limiter)
	router.RegisterMedia(e, mediaHandler, cfg, limiter, cache)
	router.RegisterMeta(e, metaHandler, cfg.JWTSecret, limiter)

	// Consumer appends watched events to the activity log. It
	// reconnects on its own, so a broker outage never blocks startup.
	go func() {
		if err := queue.StartWatchedConsumer(); err != nil {
			logger.Error().Err(err).Msg("watched consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Bool("demo", cfg.DemoMode).Msg("listening")
	if err := e.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
