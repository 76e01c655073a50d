package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/plannr/event-planner/internal/api"
	"github.com/plannr/event-planner/internal/core/ports"
	"github.com/plannr/event-planner/internal/core/service"
	"github.com/plannr/event-planner/internal/infrastructure/config"
	"github.com/plannr/event-planner/internal/infrastructure/db/mongo"
	"github.com/plannr/event-planner/internal/infrastructure/db/redis"
	"github.com/plannr/event-planner/internal/infrastructure/security"
	"github.com/plannr/event-planner/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "event-planner",
	})

	// Mongo connects lazily; a failed warm-up is retried by the first request.
	provider := mongo.NewProvider(mongo.Config{
		URI:              cfg.Mongo.URI,
		Database:         cfg.Mongo.Database,
		Timeout:          cfg.Mongo.ConnectTimeout,
		SelectionTimeout: cfg.Mongo.SelectionTimeout,
	}, logger.Component("mongo"))
	if _, err := provider.Database(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo warm-up failed, will retry on first request")
	}

	rdb, limiter := connectRedis(ctx, cfg, logger.Component("redis"))

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewTokenService(security.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	}, logger.Component("auth"))

	authService, err := service.NewAuthService(mongo.NewUserRepository(provider), hasher, tokens, limiter, logger.Component("auth"))
	if err != nil {
		log.Fatal().Err(err).Msg("init auth service")
	}
	eventService := service.NewEventService(mongo.NewEventRepository(provider), logger.Component("events"))

	e := api.NewRouter(api.Deps{
		Config: cfg,
		Log:    logger.Component("http"),
		Auth:   authService,
		Events: eventService,
		Mongo:  provider,
		Redis:  rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := provider.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	log.Info().Msg("stopped gracefully")
}

// connectRedis returns nil values when Redis is unreachable; login
// throttling is then disabled rather than blocking startup.
func connectRedis(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*goredis.Client, ports.LoginLimiter) {
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, login throttling disabled")
		return nil, nil
	}
	return rdb, redis.NewLoginThrottle(rdb, cfg.Auth.MaxFailures, cfg.Auth.Lockout)
}
