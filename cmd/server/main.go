package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"blogapi/docs"
	"blogapi/internal/auth"
	"blogapi/internal/cache"
	"blogapi/internal/config"
	"blogapi/internal/db"
	"blogapi/internal/handler"
	"blogapi/internal/logger"
	"blogapi/internal/metrics"
	"blogapi/internal/ratelimit"
	"blogapi/internal/repository"
	"blogapi/internal/router"
	"blogapi/internal/service"
)

// @title Blog API
// @version 0.1.0
// @description Authenticated blogging API: posts, user-owned tags, soft delete and pagination.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
	})
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.Debug)
	if err != nil {
		log.Error("database init", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Error("reset database", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cacheClient := cache.New(cache.Options{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPass,
		DB:        cfg.RedisDB,
		KeyPrefix: "blog:",
	})
	defer cacheClient.Close()
	if cacheClient == nil {
		log.Info("REDIS_ADDR not set, token revocation disabled")
	} else if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn("redis unreachable, logout will fail until it recovers", slog.String("error", err.Error()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	store := repository.NewStore(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	authService, err := service.NewAuthService(store, jwtService, tokenStore, collector, service.AuthOptions{
		TokenTTL:   cfg.AccessTokenTTL,
		BcryptCost: cfg.BcryptCost,
	})
	if err != nil {
		log.Error("auth service init", slog.String("error", err.Error()))
		os.Exit(1)
	}
	postService := service.NewPostService(store, collector)
	tagService := service.NewTagService(store, collector)

	limiter := ratelimit.New(cfg.AuthRatePerMinute, cfg.AuthRateBurst)
	defer limiter.Stop()

	docs.SwaggerInfo.BasePath = cfg.APIPrefix
	docs.SwaggerInfo.Version = cfg.AppVersion
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	router.Register(e, router.Deps{
		Config:      cfg,
		Logger:      log,
		AuthService: authService,
		Metrics:     collector,
		Gatherer:    reg,
		AuthLimiter: limiter,
	}, router.Handlers{
		System: handler.NewSystemHandler(cfg.AppName, cfg.AppVersion, cfg.Environment),
		Auth:   handler.NewAuthHandler(authService),
		Posts:  handler.NewPostHandler(postService),
		Tags:   handler.NewTagHandler(tagService),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info("server starting",
			slog.String("addr", addr),
			slog.String("environment", cfg.Environment),
			slog.String("swagger", "/swagger/index.html"),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server start", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.String("error", err.Error()))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
