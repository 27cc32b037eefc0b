package graphrecall

import (
	"context"

	"github.com/soundprediction/graphrecall/pkg/recall"
	"github.com/soundprediction/graphrecall/pkg/types"
)

// This file defines focused interfaces that follow the Interface Segregation Principle.
// The main GraphRecall interface is composed from these smaller interfaces.
// Consumers should depend on the smallest interface that meets their needs.

// Recaller provides read-only recall operations over the knowledge graph.
// Use this interface when you only need to run searches without managing
// indexes or embeddings.
type Recaller interface {
	// Similar finds documents semantically similar to the query text.
	Similar(ctx context.Context, text string, topK int, filters types.Filters) ([]types.RecallResult, error)

	// ReviewSuggestions aggregates review comments attached to documents
	// similar to the query text, optionally restricted to one department.
	ReviewSuggestions(ctx context.Context, text, department string, topK int) ([]types.RecallResult, error)

	// IdentifyRisks surfaces risk assessments linked to documents similar
	// to the query text, ordered by relevance and severity.
	IdentifyRisks(ctx context.Context, text string, topK int) ([]types.RecallResult, error)

	// KnowledgeBase searches any configured label directly.
	KnowledgeBase(ctx context.Context, text, label string, topK int, filters types.Filters) ([]types.RecallResult, error)

	// Hybrid combines vector similarity with structured predicate filters
	// and annotates each result with its linked risk count.
	Hybrid(ctx context.Context, text string, filters types.Filters, topK int) ([]types.RecallResult, error)

	// Dispatch runs any recall scenario value through the matching operation.
	Dispatch(ctx context.Context, s recall.Scenario) ([]types.RecallResult, error)

	// Context assembles the full review context for a single document.
	Context(ctx context.Context, documentID string) (*recall.DocumentContext, error)
}

// IndexAdmin provides administrative operations on named vector indexes.
// Use this interface for provisioning and maintenance tasks.
type IndexAdmin interface {
	// CreateIndex creates a named vector index, succeeding silently when an
	// identical index already exists.
	CreateIndex(ctx context.Context, desc types.IndexDescriptor) error

	// DropIndex removes a vector index by name.
	DropIndex(ctx context.Context, name string) error

	// ListIndexes returns the vector indexes currently known to the store.
	ListIndexes(ctx context.Context) ([]types.IndexDescriptor, error)

	// EnsureIndexes applies a YAML index manifest idempotently.
	EnsureIndexes(ctx context.Context, manifestPath string) error

	// Backfill embeds every record of a label whose vector property is
	// missing, returning the number of records embedded.
	Backfill(ctx context.Context, label, idProp, textProp, vectorProp string, batchSize int) (int, error)
}

// EmbeddingService exposes the embedding provider directly.
// Use this interface when you need vectors without any graph access.
type EmbeddingService interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for texts, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ConnectionManager provides lifecycle operations for the client.
type ConnectionManager interface {
	// VerifyConnectivity checks that the graph store is reachable.
	VerifyConnectivity(ctx context.Context) error

	// Close closes all connections and cleans up resources.
	Close(ctx context.Context) error
}

// Ensure GraphRecall composes all focused interfaces.
// This compile-time check keeps the facade and the views in sync.
var _ interface {
	Recaller
	IndexAdmin
	EmbeddingService
	ConnectionManager
} = (GraphRecall)(nil)
