package embedder

import (
	"context"
	"time"
)

// Default tuning values for the OpenAI embedder.
const (
	// DefaultBatchSize is the maximum number of texts sent in one provider call.
	DefaultBatchSize = 20

	// DefaultConcurrency bounds how many chunks are in flight at once.
	DefaultConcurrency = 3

	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimension matches DefaultModel's output width.
	DefaultDimension = 1536
)

// Client is the interface for text embedding providers.
type Client interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per input text, in input order.
	// Implementations never drop or reorder elements; a batch either
	// succeeds completely or returns an error.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the width of the vectors this client produces.
	Dimensions() int

	// Close releases any resources held by the client.
	Close() error
}

// Config holds embedder configuration.
type Config struct {
	// Model is the embedding model identifier.
	Model string

	// Dimension is the expected vector width. Vectors of any other length
	// are rejected with a DimensionMismatchError.
	Dimension int

	// BatchSize is the max texts per provider call (default 20).
	BatchSize int

	// Concurrency bounds parallel chunk requests (default 3).
	Concurrency int

	// BaseURL overrides the provider endpoint, for OpenAI-compatible
	// services. Empty means the provider default.
	BaseURL string

	// RequestsPerSecond paces provider calls. Zero disables pacing.
	RequestsPerSecond float64

	// MaxRetries is the retry ceiling per chunk for transient failures.
	MaxRetries int

	// InitialBackoff is the first retry delay (default 1s).
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff (default 30s).
	MaxBackoff time.Duration
}

// withDefaults fills zero-valued fields with package defaults.
func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Dimension <= 0 {
		c.Dimension = DefaultDimension
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 1 * time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	return c
}

// chunkTexts splits texts into consecutive chunks of at most size elements.
func chunkTexts(texts []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	chunks := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		chunks = append(chunks, texts[start:end])
	}
	return chunks
}
