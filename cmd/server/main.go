package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/buybuddy/backend/config"
	"github.com/buybuddy/backend/internal/auth"
	httpDelivery "github.com/buybuddy/backend/internal/delivery/http"
	"github.com/buybuddy/backend/internal/domain"
	"github.com/buybuddy/backend/internal/infrastructure/llm"
	"github.com/buybuddy/backend/internal/infrastructure/scraper"
	"github.com/buybuddy/backend/internal/infrastructure/store"
	"github.com/buybuddy/backend/internal/metrics"
	"github.com/buybuddy/backend/internal/usecase"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting buybuddy backend",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"store", cfg.Store.Type,
	)

	// Infrastructure dependencies.
	repo, closeStore, err := newRepository(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	extractor := scraper.New(scraper.Config{
		Timeout:     cfg.Scraper.Timeout,
		MaxBodySize: cfg.Scraper.MaxBodySize,
		UserAgent:   cfg.Scraper.UserAgent,
	})

	inference := llm.NewClient(llm.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})

	collector := metrics.NewCollector()
	ids := usecase.NewULIDGenerator()

	// Usecase layer.
	pipeline := usecase.NewPipeline(extractor, inference, usecase.NewComposer(ids), collector, logger)
	savedService := usecase.NewSavedProductService(repo, ids, logger)

	// HTTP boundary.
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	handler := httpDelivery.NewHandler(pipeline, savedService, logger)
	limiter := httpDelivery.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	defer limiter.Stop()

	router := httpDelivery.SetupRouter(cfg, handler, verifier, collector, limiter)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", "addr", addr)

	if err := router.Run(addr); err != nil {
		logger.Error("server terminated", "error", err)
		os.Exit(1)
	}
}

// newRepository builds the configured SavedProductRepository. The returned
// close function releases any held connections.
func newRepository(cfg *config.Config, logger *slog.Logger) (domain.SavedProductRepository, func(), error) {
	switch cfg.Store.Type {
	case "mongo":
		db, closeFn, err := store.Connect(context.Background(), cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		mongoStore := store.NewMongoStore(db)
		if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
			closeFn()
			return nil, nil, err
		}
		return mongoStore, closeFn, nil
	default:
		logger.Warn("using in-memory store; saved products will not survive restarts")
		return store.NewMemoryStore(), func() {}, nil
	}
}
