package embedder

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// OpenAIEmbedder implements Client against the OpenAI embeddings API, or any
// OpenAI-compatible endpoint via Config.BaseURL.
type OpenAIEmbedder struct {
	client  *openai.Client
	config  Config
	retry   *RetryConfig
	limiter *rate.Limiter
}

// NewOpenAIEmbedder creates a new OpenAI embedding client.
func NewOpenAIEmbedder(apiKey string, config Config) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embedder: api key is required")
	}
	config = config.withDefaults()

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		retry: &RetryConfig{
			MaxRetries:        config.MaxRetries,
			InitialDelay:      config.InitialBackoff,
			MaxDelay:          config.MaxBackoff,
			BackoffMultiplier: 2.0,
		},
		limiter: limiter,
	}, nil
}

// Embed returns the embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds the texts in provider-sized chunks with bounded
// concurrency. Each chunk retries independently on transient failures; the
// output slice is preallocated and chunks write into their own offsets, so
// order is preserved no matter how the requests complete.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(texts))
	chunks := chunkTexts(texts, e.config.BatchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)

	offset := 0
	for _, chunk := range chunks {
		chunk := chunk
		start := offset
		offset += len(chunk)

		g.Go(func() error {
			return withRetry(gctx, e.retry, func() error {
				return e.embedChunk(gctx, chunk, vectors[start:start+len(chunk)])
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// embedChunk makes one provider call and writes the vectors into out, which
// aliases the caller's result slice at this chunk's offset.
func (e *OpenAIEmbedder) embedChunk(ctx context.Context, chunk []string, out [][]float32) error {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: chunk,
		Model: openai.EmbeddingModel(e.config.Model),
	})
	if err != nil {
		return classifyProviderError(err)
	}

	if len(resp.Data) != len(chunk) {
		return fmt.Errorf("%w: sent %d texts, got %d vectors", ErrEmptyBatch, len(chunk), len(resp.Data))
	}

	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return fmt.Errorf("%w: vector index %d out of range", ErrEmptyBatch, item.Index)
		}
		if len(item.Embedding) != e.config.Dimension {
			return NewDimensionMismatchError(e.config.Dimension, len(item.Embedding))
		}
		out[item.Index] = item.Embedding
	}
	return nil
}

// Dimensions returns the configured vector width.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dimension
}

// Close implements Client. The underlying HTTP client holds no resources
// needing explicit release.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

// classifyProviderError maps a go-openai error onto the package's
// transient/permanent taxonomy.
func classifyProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(apiErr.HTTPStatusCode, apiErr.Message, transientStatus(apiErr.HTTPStatusCode))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(reqErr.HTTPStatusCode, reqErr.Error(), transientStatus(reqErr.HTTPStatusCode))
	}
	// Transport-level failures (timeouts, resets) are transient by default.
	return NewProviderError(0, err.Error(), true)
}
