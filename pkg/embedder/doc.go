// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and an OpenAI-compatible
// implementation, plus composable wrappers for caching, retry, rate limiting
// and circuit breaking.
//
// # Usage
//
//	client, err := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model:     "text-embedding-3-small",
//	    Dimension: 1536,
//	})
//
//	vec, err := client.Embed(ctx, "hello world")
//
// # Batch Processing
//
// EmbedBatch splits its input into provider-sized chunks and embeds them with
// bounded concurrency. Results always come back in input order, one vector per
// input text, or the call fails as a whole. Each chunk retries independently
// on transient provider failures.
//
// # Caching
//
// Wrap any Client in a cache with NewCachedClient. Cache keys are derived from
// the text content, so identical texts resolve to bit-identical vectors
// without a provider round trip. MemoryCache, LRUCache and BadgerCache cover
// the unbounded, size-bounded and persistent cases.
package embedder
