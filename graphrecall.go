package graphrecall

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/graphrecall/pkg/driver"
	"github.com/soundprediction/graphrecall/pkg/embedder"
	"github.com/soundprediction/graphrecall/pkg/index"
	"github.com/soundprediction/graphrecall/pkg/recall"
	"github.com/soundprediction/graphrecall/pkg/types"
)

// GraphRecall is the main interface for the recall subsystem. It covers the
// recall scenarios, index lifecycle and embedding operations.
type GraphRecall interface {
	// Similar finds documents similar to text with optional filters.
	Similar(ctx context.Context, text string, topK int, filters types.Filters) ([]types.RecallResult, error)

	// ReviewSuggestions aggregates review comments from similar documents,
	// optionally restricted to one department.
	ReviewSuggestions(ctx context.Context, text, department string, topK int) ([]types.RecallResult, error)

	// IdentifyRisks surfaces risk assessments attached to similar documents.
	IdentifyRisks(ctx context.Context, text string, topK int) ([]types.RecallResult, error)

	// KnowledgeBase searches any configured label's index.
	KnowledgeBase(ctx context.Context, text, label string, topK int, filters types.Filters) ([]types.RecallResult, error)

	// Hybrid combines document similarity with predicate filters.
	Hybrid(ctx context.Context, text string, filters types.Filters, topK int) ([]types.RecallResult, error)

	// Dispatch routes a scenario variant to its operation.
	Dispatch(ctx context.Context, s recall.Scenario) ([]types.RecallResult, error)

	// Context loads one document with its reviews, risks and recommendation.
	Context(ctx context.Context, documentID string) (*recall.DocumentContext, error)

	// CreateIndex creates a vector index, idempotently.
	CreateIndex(ctx context.Context, desc types.IndexDescriptor) error

	// DropIndex drops an index; absent indexes are not an error.
	DropIndex(ctx context.Context, name string) error

	// ListIndexes returns the store's vector indexes with live state.
	ListIndexes(ctx context.Context) ([]types.IndexDescriptor, error)

	// EnsureIndexes applies a YAML index manifest.
	EnsureIndexes(ctx context.Context, manifestPath string) error

	// Backfill embeds records missing their vector property and returns the
	// number embedded.
	Backfill(ctx context.Context, label, idProp, textProp, vectorProp string, batchSize int) (int, error)

	// Embed returns the embedding for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// VerifyConnectivity checks the graph store is reachable.
	VerifyConnectivity(ctx context.Context) error

	// Close releases all resources.
	Close(ctx context.Context) error
}

// Config holds configuration for the graphrecall client.
type Config struct {
	// DatabaseURI is the bolt URI of the graph store.
	DatabaseURI string
	// DatabaseUser and DatabasePassword authenticate against the store.
	DatabaseUser     string
	DatabasePassword string
	// DatabaseName selects the database (default "neo4j").
	DatabaseName string

	// EmbeddingAPIKey authenticates against the embedding provider.
	EmbeddingAPIKey string
	// Embedding tunes the embedding client; zero values get defaults.
	Embedding embedder.Config

	// CacheSize bounds the embedding cache when positive; zero means an
	// unbounded in-memory cache.
	CacheSize int
	// CachePath enables the persistent Badger cache when non-empty.
	CachePath string
	// CacheTTL expires persistent cache entries; zero means never.
	CacheTTL time.Duration

	// BreakerEnabled wraps the embedding client in a circuit breaker.
	BreakerEnabled bool
	Breaker        embedder.BreakerConfig

	// Recall configures the engine's labels and limits; zero value gets
	// the review-domain defaults.
	Recall recall.Config

	// Logger receives structured logs; nil means slog.Default().
	Logger *slog.Logger
}

// Client is the main implementation of the GraphRecall interface.
type Client struct {
	driver   *driver.Neo4jDriver
	embedder embedder.Client
	engine   *recall.Engine
	indexes  *index.Manager
	config   Config
	logger   *slog.Logger
}

var _ GraphRecall = (*Client)(nil)

// NewClient connects to the graph store and assembles the embedding client,
// index manager and recall engine.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	graphDriver, err := driver.NewNeo4jDriver(ctx, cfg.DatabaseURI, cfg.DatabaseUser, cfg.DatabasePassword, cfg.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("graphrecall: %w", err)
	}

	embedClient, err := buildEmbedder(cfg, logger)
	if err != nil {
		closeErr := graphDriver.Close(ctx)
		if closeErr != nil {
			logger.Warn("failed to close graph driver", "error", closeErr)
		}
		return nil, fmt.Errorf("graphrecall: %w", err)
	}

	return &Client{
		driver:   graphDriver,
		embedder: embedClient,
		engine:   recall.NewEngine(graphDriver, graphDriver, embedClient, cfg.Recall, logger),
		indexes:  index.NewManager(graphDriver, graphDriver, embedClient, logger),
		config:   cfg,
		logger:   logger,
	}, nil
}

// buildEmbedder assembles the embedding stack: provider, optional circuit
// breaker, then the cache layer.
func buildEmbedder(cfg Config, logger *slog.Logger) (embedder.Client, error) {
	base, err := embedder.NewOpenAIEmbedder(cfg.EmbeddingAPIKey, cfg.Embedding)
	if err != nil {
		return nil, err
	}

	var client embedder.Client = base
	if cfg.BreakerEnabled {
		client = embedder.NewCircuitBreakerClient(client, cfg.Breaker, logger, "embedding")
	}

	var cache embedder.Cache
	switch {
	case cfg.CachePath != "":
		cache, err = embedder.NewBadgerCache(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
	case cfg.CacheSize > 0:
		cache, err = embedder.NewLRUCache(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	default:
		cache = embedder.NewMemoryCache()
	}

	model := cfg.Embedding.Model
	if model == "" {
		model = embedder.DefaultModel
	}
	return embedder.NewCachedClient(client, cache, model, logger), nil
}

// Similar implements GraphRecall.
func (c *Client) Similar(ctx context.Context, text string, topK int, filters types.Filters) ([]types.RecallResult, error) {
	return c.engine.Similar(ctx, text, topK, filters)
}

// ReviewSuggestions implements GraphRecall.
func (c *Client) ReviewSuggestions(ctx context.Context, text, department string, topK int) ([]types.RecallResult, error) {
	return c.engine.ReviewSuggestions(ctx, text, department, topK)
}

// IdentifyRisks implements GraphRecall.
func (c *Client) IdentifyRisks(ctx context.Context, text string, topK int) ([]types.RecallResult, error) {
	return c.engine.IdentifyRisks(ctx, text, topK)
}

// KnowledgeBase implements GraphRecall.
func (c *Client) KnowledgeBase(ctx context.Context, text, label string, topK int, filters types.Filters) ([]types.RecallResult, error) {
	return c.engine.KnowledgeBase(ctx, text, label, topK, filters)
}

// Hybrid implements GraphRecall.
func (c *Client) Hybrid(ctx context.Context, text string, filters types.Filters, topK int) ([]types.RecallResult, error) {
	return c.engine.Hybrid(ctx, text, filters, topK)
}

// Dispatch implements GraphRecall.
func (c *Client) Dispatch(ctx context.Context, s recall.Scenario) ([]types.RecallResult, error) {
	return c.engine.Dispatch(ctx, s)
}

// Context implements GraphRecall.
func (c *Client) Context(ctx context.Context, documentID string) (*recall.DocumentContext, error) {
	return c.engine.Context(ctx, documentID)
}

// CreateIndex implements GraphRecall.
func (c *Client) CreateIndex(ctx context.Context, desc types.IndexDescriptor) error {
	return c.indexes.CreateIndex(ctx, desc)
}

// DropIndex implements GraphRecall.
func (c *Client) DropIndex(ctx context.Context, name string) error {
	return c.indexes.DropIndex(ctx, name)
}

// ListIndexes implements GraphRecall.
func (c *Client) ListIndexes(ctx context.Context) ([]types.IndexDescriptor, error) {
	return c.indexes.ListIndexes(ctx)
}

// EnsureIndexes implements GraphRecall.
func (c *Client) EnsureIndexes(ctx context.Context, manifestPath string) error {
	return c.indexes.EnsureFromManifest(ctx, manifestPath)
}

// Backfill implements GraphRecall.
func (c *Client) Backfill(ctx context.Context, label, idProp, textProp, vectorProp string, batchSize int) (int, error) {
	return c.indexes.Backfill(ctx, label, idProp, textProp, vectorProp, batchSize)
}

// Embed implements GraphRecall.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.embedder.Embed(ctx, text)
}

// EmbedBatch implements GraphRecall.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embedder.EmbedBatch(ctx, texts)
}

// VerifyConnectivity implements GraphRecall.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close implements GraphRecall, releasing the embedding client and then the
// graph driver.
func (c *Client) Close(ctx context.Context) error {
	if err := c.embedder.Close(); err != nil {
		c.logger.Warn("failed to close embedding client", "error", err)
	}
	return c.driver.Close(ctx)
}
