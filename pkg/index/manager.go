package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/graphrecall/pkg/driver"
	"github.com/soundprediction/graphrecall/pkg/embedder"
	"github.com/soundprediction/graphrecall/pkg/types"
)

// DefaultBackfillBatchSize is how many records one backfill page embeds.
const DefaultBackfillBatchSize = 50

// ErrIndexConflict indicates an index name already exists with a different
// shape (label, property, dimension or similarity).
var ErrIndexConflict = errors.New("index exists with conflicting definition")

// Manager provides vector index lifecycle operations.
type Manager struct {
	store    driver.IndexStore
	embedded driver.EmbeddingStore
	embed    embedder.Client
	logger   *slog.Logger
}

// NewManager creates an index manager. The embedder may be nil when only
// create/drop/list operations are needed; Backfill requires it.
func NewManager(store driver.IndexStore, embedded driver.EmbeddingStore, embed embedder.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		embedded: embedded,
		embed:    embed,
		logger:   logger,
	}
}

// CreateIndex creates a vector index. Creating an index that already exists
// with an identical definition succeeds without touching the store; a name
// collision with a different dimension or similarity returns ErrIndexConflict.
func (m *Manager) CreateIndex(ctx context.Context, desc types.IndexDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	existing, err := m.store.ListVectorIndexes(ctx)
	if err != nil {
		return err
	}
	for _, have := range existing {
		if have.Name != desc.Name {
			continue
		}
		if have.Matches(desc) {
			m.logger.Debug("vector index already exists", "index", desc.Name)
			return nil
		}
		return fmt.Errorf("%w: %q is (%s.%s, dim %d, %s), requested (%s.%s, dim %d, %s)",
			ErrIndexConflict, desc.Name,
			have.Label, have.Property, have.Dimension, have.Similarity,
			desc.Label, desc.Property, desc.Dimension, desc.Similarity)
	}

	if err := m.store.CreateVectorIndex(ctx, desc); err != nil {
		return err
	}
	m.logger.Info("created vector index",
		"index", desc.Name, "label", desc.Label, "property", desc.Property, "dimension", desc.Dimension)
	return nil
}

// DropIndex removes an index. Dropping an absent index succeeds.
func (m *Manager) DropIndex(ctx context.Context, name string) error {
	if err := m.store.DropIndex(ctx, name); err != nil {
		return err
	}
	m.logger.Info("dropped vector index", "index", name)
	return nil
}

// ListIndexes returns the store's current vector indexes with live state.
func (m *Manager) ListIndexes(ctx context.Context) ([]types.IndexDescriptor, error) {
	return m.store.ListVectorIndexes(ctx)
}

// Backfill embeds every record of the label that has non-empty text but no
// vector, in pages of batchSize, and writes the vectors back. It returns the
// number of records embedded.
//
// Because each page only selects records still missing the vector, an
// interrupted run resumes where it stopped and completed records are never
// re-embedded.
func (m *Manager) Backfill(ctx context.Context, label, idProp, textProp, vectorProp string, batchSize int) (int, error) {
	if m.embed == nil {
		return 0, fmt.Errorf("backfill: no embedding client configured")
	}
	if batchSize <= 0 {
		batchSize = DefaultBackfillBatchSize
	}

	remaining, err := m.embedded.CountMissingEmbeddings(ctx, label, textProp, vectorProp)
	if err != nil {
		return 0, err
	}
	m.logger.Info("starting embedding backfill",
		"label", label, "property", vectorProp, "missing", remaining)

	total := 0
	for {
		records, err := m.embedded.MissingEmbeddings(ctx, label, idProp, textProp, vectorProp, batchSize)
		if err != nil {
			return total, err
		}
		if len(records) == 0 {
			break
		}

		texts := make([]string, len(records))
		for i, rec := range records {
			texts[i] = rec.StringProp(textProp)
		}

		vectors, err := m.embed.EmbedBatch(ctx, texts)
		if err != nil {
			return total, fmt.Errorf("backfill %s: %w", label, err)
		}

		byID := make(map[string][]float32, len(records))
		for i, rec := range records {
			byID[rec.ID] = vectors[i]
		}
		if err := m.embedded.WriteEmbeddings(ctx, label, idProp, vectorProp, byID); err != nil {
			return total, err
		}

		total += len(records)
		m.logger.Info("backfill progress", "label", label, "embedded", total)
	}

	m.logger.Info("embedding backfill complete", "label", label, "embedded", total)
	return total, nil
}
