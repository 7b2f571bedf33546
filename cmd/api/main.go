package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"personen-api/internal/config"
	"personen-api/internal/db"
	apihttp "personen-api/internal/http"
	"personen-api/internal/repository"
	"personen-api/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db probe failed", zap.Error(err))
	}

	if err := db.RunMigrations(ctx, cfg); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	// Failed-login throttling: redis-backed when REDIS_ADDR is set, an
	// in-process counter otherwise. Only failed attempts count; a
	// successful login clears the counter.
	var limiter service.LoginRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisLoginRateLimiter(
				redisClient,
				time.Duration(cfg.LoginWindowSeconds)*time.Second,
				cfg.LoginMaxAttempts,
			)
		}
		cancel()
	}
	if limiter == nil {
		logger.Info("using in-process login limiter",
			zap.Int("max_attempts", cfg.LoginMaxAttempts),
			zap.Int("window_seconds", cfg.LoginWindowSeconds))
		limiter = service.NewMemoryLoginRateLimiter(
			time.Duration(cfg.LoginWindowSeconds)*time.Second,
			cfg.LoginMaxAttempts,
		)
	}

	userRepo := repository.NewPgUserRepository(pool)
	personRepo := repository.NewPgPersonRepository(pool)

	tokenSvc := service.NewTokenService(cfg.TokenSecret, time.Duration(cfg.TokenTTLSeconds)*time.Second)
	loginSvc := service.NewLoginService(logger, userRepo, tokenSvc, limiter, cfg.PlaintextPasswords)

	loginHandler := apihttp.NewLoginHandler(logger, loginSvc, cfg.LegacyStatusCodes)
	personHandler := apihttp.NewPersonHandler(logger, personRepo, cfg.LegacyStatusCodes,
		time.Duration(cfg.QueryTimeoutSeconds)*time.Second)
	router := apihttp.NewRouter(logger, loginHandler, personHandler, tokenSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
