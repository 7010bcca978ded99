package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/apoll/apoll/internal/api"
	"github.com/apoll/apoll/internal/config"
	"github.com/apoll/apoll/internal/db"
	"github.com/apoll/apoll/internal/middleware"
	"github.com/apoll/apoll/internal/observ"
	"github.com/apoll/apoll/internal/repository/postgres"
	"github.com/apoll/apoll/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Startup has no deadline; once serving, each request carries its
	// own context.
	ctx := context.Background()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis connection established", zap.String("addr", redisOpts.Addr))

	pool := database.Pool()
	sessionStore := session.NewRedisStore(redisClient, cfg.SessionTTL)
	sessionManager := middleware.NewSessionManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL, logger)

	router := api.NewRouter(api.Deps{
		Polls:       postgres.NewPollStore(pool),
		Members:     postgres.NewMembershipStore(pool),
		Suggestions: postgres.NewSuggestionStore(pool),
		Sessions:    sessionManager,
		Logger:      logger,
	})

	logger.Info("starting apoll",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return router.Run(":" + cfg.Port)
}
