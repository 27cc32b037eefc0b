package graphrecall

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/soundprediction/graphrecall"
	"github.com/soundprediction/graphrecall/pkg/config"
	"github.com/soundprediction/graphrecall/pkg/embedder"
)

// clientHandle is the connected facade shared by the subcommands.
type clientHandle = *graphrecall.Client

// newLogger builds a structured logger from the log section of the config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newClient connects a graphrecall client from the loaded configuration.
func newClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*graphrecall.Client, error) {
	clientCfg := graphrecall.Config{
		DatabaseURI:      cfg.Database.URI,
		DatabaseUser:     cfg.Database.Username,
		DatabasePassword: cfg.Database.Password,
		DatabaseName:     cfg.Database.Database,
		EmbeddingAPIKey:  cfg.Embedding.APIKey,
		Embedding: embedder.Config{
			Model:             cfg.Embedding.Model,
			Dimension:         cfg.Embedding.Dimension,
			BatchSize:         cfg.Embedding.BatchSize,
			Concurrency:       cfg.Embedding.Concurrency,
			BaseURL:           cfg.Embedding.BaseURL,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
			MaxRetries:        cfg.Embedding.MaxRetries,
		},
		BreakerEnabled: cfg.CircuitBreaker.Enabled,
		Logger:         logger,
	}

	switch cfg.Embedding.Cache {
	case "badger":
		clientCfg.CachePath = cfg.Embedding.CachePath
		clientCfg.CacheTTL = time.Duration(cfg.Embedding.CacheTTL) * time.Second
	case "lru":
		clientCfg.CacheSize = cfg.Embedding.CacheSize
	}

	if cfg.CircuitBreaker.Enabled {
		clientCfg.Breaker = embedder.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}
	}

	clientCfg.Recall.MaxTopK = cfg.Recall.MaxTopK
	clientCfg.Recall.RiskCandidates = cfg.Recall.RiskCandidates

	return graphrecall.NewClient(ctx, clientCfg)
}
