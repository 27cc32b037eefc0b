package driver

import (
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrecall/pkg/types"
)

func TestValidIdent(t *testing.T) {
	valid := []string{"Document", "prd_id", "_internal", "HAS_REVIEW", "content_embedding"}
	for _, s := range valid {
		assert.NoError(t, validIdent(s), s)
	}

	invalid := []string{"", "9lives", "drop index", "n.`x`", "a-b", "a;b", "Document`) DETACH DELETE (n"}
	for _, s := range invalid {
		assert.Error(t, validIdent(s), s)
	}
}

func TestStoreErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := storeErr("vector query", "document_content_vector", cause)

	assert.True(t, errors.Is(err, ErrGraphStore))
	assert.True(t, errors.Is(err, cause))

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "vector query", se.Op)
	assert.Equal(t, "document_content_vector", se.Target)
	assert.Contains(t, err.Error(), "vector query")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRecordFromDBNode(t *testing.T) {
	node := dbtype.Node{
		Labels: []string{"Document"},
		Props: map[string]any{
			"prd_id":            "PRD-001",
			"title":             "Checkout redesign",
			"priority":          int64(2),
			"content_embedding": []float64{0.1, 0.2, 0.3},
			"tags":              []any{"payments", "web"},
		},
	}

	rec := recordFromDBNode(node, "prd_id")

	assert.Equal(t, "PRD-001", rec.ID)
	assert.Equal(t, "Document", rec.Label)
	assert.Equal(t, "Checkout redesign", rec.Props["title"])
	assert.Equal(t, int64(2), rec.Props["priority"])
	assert.NotContains(t, rec.Props, "content_embedding", "embedding payloads must be stripped")
	assert.Contains(t, rec.Props, "tags", "string lists are not vectors")
}

func TestRecordFromDBNodeNonStringID(t *testing.T) {
	node := dbtype.Node{
		Labels: []string{"Department"},
		Props:  map[string]any{"dept_id": int64(42)},
	}
	rec := recordFromDBNode(node, "dept_id")
	assert.Equal(t, "42", rec.ID)
}

func TestIsVectorValue(t *testing.T) {
	assert.True(t, isVectorValue([]float32{0.5}))
	assert.True(t, isVectorValue([]float64{0.5}))
	assert.True(t, isVectorValue([]any{0.1, 0.2}))
	assert.False(t, isVectorValue([]any{"a", "b"}))
	assert.False(t, isVectorValue([]any{}))
	assert.False(t, isVectorValue("text"))
	assert.False(t, isVectorValue(int64(3)))
}

func TestRecordAccessors(t *testing.T) {
	record := &db.Record{
		Keys: []string{"name", "score", "count", "labelsOrTypes", "options"},
		Values: []any{
			"document_content_vector",
			0.91,
			int64(7),
			[]any{"Document"},
			map[string]any{"indexConfig": map[string]any{"vector.dimensions": int64(1536)}},
		},
	}

	s, ok := recordString(record, "name")
	require.True(t, ok)
	assert.Equal(t, "document_content_vector", s)

	f, ok := recordFloat(record, "score")
	require.True(t, ok)
	assert.InDelta(t, 0.91, f, 1e-9)

	// counts come back as int64 and widen
	f, ok = recordFloat(record, "count")
	require.True(t, ok)
	assert.Equal(t, 7.0, f)

	i, ok := recordInt(record, "count")
	require.True(t, ok)
	assert.Equal(t, int64(7), i)

	assert.Equal(t, "Document", firstString(record, "labelsOrTypes"))
	assert.Equal(t, "", firstString(record, "missing"))

	m, ok := recordMap(record, "options")
	require.True(t, ok)
	assert.Contains(t, m, "indexConfig")

	_, ok = recordString(record, "missing")
	assert.False(t, ok)
}

func TestIndexStateFromNeo4j(t *testing.T) {
	assert.Equal(t, types.IndexStateReady, indexStateFromNeo4j("ONLINE"))
	assert.Equal(t, types.IndexStateCreating, indexStateFromNeo4j("POPULATING"))
	assert.Equal(t, types.IndexStateFailed, indexStateFromNeo4j("FAILED"))
	assert.Equal(t, types.IndexState("weird"), indexStateFromNeo4j("WEIRD"))
}

func TestVectorQueryDefaults(t *testing.T) {
	q := VectorQuery{Index: "document_content_vector", Vector: []float32{0.1}, K: 5, IDProp: "prd_id"}
	assert.Empty(t, q.Filters)
}
