package embedder

import (
	"context"
	"log/slog"
)

// CachedClient wraps a Client with a cache layer. Single embeds are
// cache-first; batch embeds resolve hits up front and only send the misses
// to the underlying client, stitching the results back into input order.
type CachedClient struct {
	client Client
	cache  Cache
	model  string
	logger *slog.Logger
}

// NewCachedClient wraps client with cache. The model name partitions the
// key space so switching models never returns stale vectors.
func NewCachedClient(client Client, cache Cache, model string, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{
		client: client,
		cache:  cache,
		model:  model,
		logger: logger,
	}
}

// Embed implements Client.
func (c *CachedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.model, text)
	if vector, ok := c.cache.Get(key); ok {
		return vector, nil
	}

	vector, err := c.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, vector)
	return vector, nil
}

// EmbedBatch implements Client.
func (c *CachedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(texts))
	var misses []string
	var missIdx []int

	for i, text := range texts {
		if vector, ok := c.cache.Get(CacheKey(c.model, text)); ok {
			vectors[i] = vector
			continue
		}
		misses = append(misses, text)
		missIdx = append(missIdx, i)
	}

	if len(misses) == 0 {
		return vectors, nil
	}
	c.logger.Debug("embedding cache misses", "total", len(texts), "misses", len(misses))

	embedded, err := c.client.EmbedBatch(ctx, misses)
	if err != nil {
		return nil, err
	}

	for j, vector := range embedded {
		i := missIdx[j]
		vectors[i] = vector
		c.cache.Set(CacheKey(c.model, texts[i]), vector)
	}
	return vectors, nil
}

// Dimensions implements Client.
func (c *CachedClient) Dimensions() int {
	return c.client.Dimensions()
}

// Close implements Client, closing the cache and then the wrapped client.
func (c *CachedClient) Close() error {
	cacheErr := c.cache.Close()
	if err := c.client.Close(); err != nil {
		return err
	}
	return cacheErr
}
