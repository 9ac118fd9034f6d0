package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"blogapi/internal/auth"
	"blogapi/internal/config"
	"blogapi/internal/db"
	"blogapi/internal/logger"
	"blogapi/internal/metrics"
	"blogapi/internal/repository"
	"blogapi/internal/service"
)

//go:embed seed.json
var defaultFixture []byte

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Format: cfg.LogFormat, Level: cfg.LogLevel, Environment: cfg.Environment})
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	raw, source, err := loadFixture(os.Getenv("SEED_FILE"), os.Getenv("SEED_URL"))
	if err != nil {
		log.Error("load fixture", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fixture, err := parseFixture(raw)
	if err != nil {
		log.Error("parse fixture", slog.String("source", source), slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("fixture loaded", slog.String("source", source), slog.Int("users", len(fixture.Users)))

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.Debug)
	if err != nil {
		log.Error("database init", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := repository.NewStore(gormDB)
	authService, err := service.NewAuthService(
		store,
		auth.NewJWTService(cfg.JWTSecret),
		auth.NewTokenStore(nil),
		metrics.Noop{},
		service.AuthOptions{TokenTTL: cfg.AccessTokenTTL, BcryptCost: cfg.BcryptCost},
	)
	if err != nil {
		log.Error("auth service init", slog.String("error", err.Error()))
		os.Exit(1)
	}

	s := &seeder{
		auth:  authService,
		tags:  service.NewTagService(store, metrics.Noop{}),
		posts: service.NewPostService(store, metrics.Noop{}),
		log:   log,
	}
	stats, err := s.Run(context.Background(), fixture)
	if err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seed completed",
		slog.Int("users_created", stats.Users),
		slog.Int("users_skipped", stats.SkippedUsers),
		slog.Int("tags_created", stats.Tags),
		slog.Int("posts_created", stats.Posts),
	)
}

// loadFixture reads the fixture from a file, then a URL, falling back to the embedded default.
func loadFixture(file, url string) ([]byte, string, error) {
	switch {
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, file, fmt.Errorf("read %s: %w", file, err)
		}
		return raw, file, nil
	case url != "":
		raw, err := fetchFixture(url)
		return raw, url, err
	default:
		return defaultFixture, "embedded", nil
	}
}

func fetchFixture(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixture URL returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
