package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// mockStore is an in-memory stand-in for the graph store's index and
// embedding surfaces.
type mockStore struct {
	indexes     map[string]types.IndexDescriptor
	texts       map[string]string    // record ID -> text
	vectors     map[string][]float32 // record ID -> stored vector
	createCalls int
	writeCalls  int
}

func newMockStore() *mockStore {
	return &mockStore{
		indexes: make(map[string]types.IndexDescriptor),
		texts:   make(map[string]string),
		vectors: make(map[string][]float32),
	}
}

func (s *mockStore) CreateVectorIndex(_ context.Context, desc types.IndexDescriptor) error {
	s.createCalls++
	desc.State = types.IndexStateReady
	s.indexes[desc.Name] = desc
	return nil
}

func (s *mockStore) DropIndex(_ context.Context, name string) error {
	delete(s.indexes, name)
	return nil
}

func (s *mockStore) ListVectorIndexes(_ context.Context) ([]types.IndexDescriptor, error) {
	out := make([]types.IndexDescriptor, 0, len(s.indexes))
	for _, desc := range s.indexes {
		out = append(out, desc)
	}
	return out, nil
}

func (s *mockStore) MissingEmbeddings(_ context.Context, label, idProp, textProp, vectorProp string, limit int) ([]types.Record, error) {
	var ids []string
	for id, text := range s.texts {
		if text == "" {
			continue
		}
		if _, ok := s.vectors[id]; ok {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	records := make([]types.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, types.Record{
			ID:    id,
			Label: label,
			Props: map[string]any{textProp: s.texts[id]},
		})
	}
	return records, nil
}

func (s *mockStore) CountMissingEmbeddings(_ context.Context, _, _, _ string) (int64, error) {
	var count int64
	for id, text := range s.texts {
		if text == "" {
			continue
		}
		if _, ok := s.vectors[id]; !ok {
			count++
		}
	}
	return count, nil
}

func (s *mockStore) WriteEmbeddings(_ context.Context, _, _, _ string, vectors map[string][]float32) error {
	s.writeCalls++
	for id, vector := range vectors {
		s.vectors[id] = vector
	}
	return nil
}

// mockEmbedder embeds deterministically and can be told to fail after a set
// number of batches.
type mockEmbedder struct {
	batches   int
	failAfter int // fail when batches > failAfter; 0 means never
}

func (e *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batches++
	if e.failAfter > 0 && e.batches > e.failAfter {
		return nil, errors.New("503 service unavailable")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text))}
	}
	return vectors, nil
}

func (e *mockEmbedder) Dimensions() int { return 1 }
func (e *mockEmbedder) Close() error    { return nil }

func docIndex() types.IndexDescriptor {
	return types.IndexDescriptor{
		Name:       "document_description_vector",
		Label:      "Document",
		Property:   "description_embedding",
		Dimension:  1536,
		Similarity: types.SimilarityCosine,
	}
}

func TestCreateIndexIdempotent(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store, store, nil, nil)

	require.NoError(t, mgr.CreateIndex(context.Background(), docIndex()))
	require.NoError(t, mgr.CreateIndex(context.Background(), docIndex()))

	assert.Equal(t, 1, store.createCalls, "identical re-create must not touch the store")
}

func TestCreateIndexConflictingDimension(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store, store, nil, nil)

	require.NoError(t, mgr.CreateIndex(context.Background(), docIndex()))

	conflicting := docIndex()
	conflicting.Dimension = 768
	err := mgr.CreateIndex(context.Background(), conflicting)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexConflict))
	assert.Equal(t, 1, store.createCalls)
}

func TestCreateIndexRejectsInvalidDescriptor(t *testing.T) {
	mgr := NewManager(newMockStore(), nil, nil, nil)
	err := mgr.CreateIndex(context.Background(), types.IndexDescriptor{Name: "x"})
	assert.Error(t, err)
}

func TestDropIndexAbsent(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store, store, nil, nil)
	assert.NoError(t, mgr.DropIndex(context.Background(), "never_created"))
}

func TestBackfillEmbedsAllMissing(t *testing.T) {
	store := newMockStore()
	for i := 0; i < 10; i++ {
		store.texts[fmt.Sprintf("doc-%02d", i)] = fmt.Sprintf("document body %d", i)
	}
	store.texts["doc-empty"] = "" // excluded: nothing to embed

	mgr := NewManager(store, store, &mockEmbedder{}, nil)
	count, err := mgr.Backfill(context.Background(), "Document", "prd_id", "description", "description_embedding", 3)
	require.NoError(t, err)

	assert.Equal(t, 10, count)
	assert.Len(t, store.vectors, 10)
	assert.NotContains(t, store.vectors, "doc-empty")
}

func TestBackfillResumesAfterFailure(t *testing.T) {
	store := newMockStore()
	for i := 0; i < 10; i++ {
		store.texts[fmt.Sprintf("doc-%02d", i)] = fmt.Sprintf("document body %d", i)
	}

	// First run dies after three batches of two, 60% done.
	failing := &mockEmbedder{failAfter: 3}
	mgr := NewManager(store, store, failing, nil)
	count, err := mgr.Backfill(context.Background(), "Document", "prd_id", "description", "description_embedding", 2)
	require.Error(t, err)
	assert.Equal(t, 6, count)
	assert.Len(t, store.vectors, 6)

	// Second run picks up the remaining 40% without re-embedding the rest.
	healthy := &mockEmbedder{}
	mgr = NewManager(store, store, healthy, nil)
	count, err = mgr.Backfill(context.Background(), "Document", "prd_id", "description", "description_embedding", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Len(t, store.vectors, 10)
	assert.Equal(t, 2, healthy.batches, "resume only embeds what is still missing")
}

func TestBackfillWithoutEmbedder(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store, store, nil, nil)
	_, err := mgr.Backfill(context.Background(), "Document", "prd_id", "description", "description_embedding", 5)
	assert.Error(t, err)
}

func TestNormalizeIndexName(t *testing.T) {
	cases := []struct {
		label, property, want string
	}{
		{"Document", "description_embedding", "document_description_vector"},
		{"ReviewComment", "content_embedding", "review_comment_content_vector"},
		{"RiskAssessment", "impact", "risk_assessment_impact_vector"},
		{"Department", "name_embedding", "department_name_vector"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeIndexName(tc.label, tc.property), "%s.%s", tc.label, tc.property)
	}
}

func TestEnsureFromManifest(t *testing.T) {
	manifest := `
indexes:
  - name: document_description_vector
    label: Document
    property: description_embedding
    dimension: 1536
    similarity: cosine
  - label: ReviewComment
    property: content_embedding
    dimension: 1536
`
	path := filepath.Join(t.TempDir(), "indexes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	store := newMockStore()
	mgr := NewManager(store, store, nil, nil)
	require.NoError(t, mgr.EnsureFromManifest(context.Background(), path))

	assert.Len(t, store.indexes, 2)
	assert.Contains(t, store.indexes, "document_description_vector")
	assert.Contains(t, store.indexes, "review_comment_content_vector", "unnamed entries get normalized names")

	// Re-applying is a no-op.
	require.NoError(t, mgr.EnsureFromManifest(context.Background(), path))
	assert.Equal(t, 2, store.createCalls)
}

func TestLoadManifestRejectsBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indexes:\n  - label: Document\n    property: x\n"), 0o644))

	_, err := LoadManifest(path)
	assert.Error(t, err, "missing dimension must be rejected")
}
