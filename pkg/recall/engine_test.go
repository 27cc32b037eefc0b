package recall

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrecall/pkg/driver"
	"github.com/soundprediction/graphrecall/pkg/types"
)

// mockGraph is an in-memory graph with real cosine scoring, so scenario
// tests exercise actual similarity ordering instead of canned responses.
type mockGraph struct {
	records map[string]types.Record          // record ID -> record
	vectors map[string]map[string][]float32  // index name -> record ID -> vector
	edges   []edge
	indexes []types.IndexDescriptor
	failure error // injected store failure
}

type edge struct {
	from, rel, to string
}

func newMockGraph() *mockGraph {
	return &mockGraph{
		records: make(map[string]types.Record),
		vectors: make(map[string]map[string][]float32),
	}
}

func (g *mockGraph) addRecord(indexName string, rec types.Record, vector []float32) {
	g.records[rec.ID] = rec
	if indexName != "" {
		if g.vectors[indexName] == nil {
			g.vectors[indexName] = make(map[string][]float32)
		}
		g.vectors[indexName][rec.ID] = vector
	}
}

func (g *mockGraph) VectorTopK(_ context.Context, q driver.VectorQuery) ([]types.ScoredRecord, error) {
	if g.failure != nil {
		return nil, g.failure
	}
	var scored []types.ScoredRecord
	for id, vec := range g.vectors[q.Index] {
		rec := g.records[id]
		if !matchesFilters(rec, q.Filters) {
			continue
		}
		scored = append(scored, types.ScoredRecord{Record: rec, Score: cosine(q.Vector, vec)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Record.ID < scored[j].Record.ID
	})
	if len(scored) > q.K {
		scored = scored[:q.K]
	}
	return scored, nil
}

func (g *mockGraph) FindRecords(_ context.Context, label, _ string, filters types.Filters, limit int) ([]types.Record, error) {
	if g.failure != nil {
		return nil, g.failure
	}
	var out []types.Record
	for _, rec := range g.records {
		if rec.Label != label || !matchesFilters(rec, filters) {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (g *mockGraph) Traverse(_ context.Context, t driver.Traversal) ([]driver.Neighbor, error) {
	if g.failure != nil {
		return nil, g.failure
	}
	inSource := make(map[string]bool, len(t.SourceIDs))
	for _, id := range t.SourceIDs {
		inSource[id] = true
	}
	var neighbors []driver.Neighbor
	for _, e := range g.edges {
		if e.rel != t.RelType {
			continue
		}
		var sourceID, targetID string
		if t.Direction == driver.Incoming {
			sourceID, targetID = e.to, e.from
		} else {
			sourceID, targetID = e.from, e.to
		}
		if !inSource[sourceID] {
			continue
		}
		rec, ok := g.records[targetID]
		if !ok || rec.Label != t.TargetLabel {
			continue
		}
		neighbors = append(neighbors, driver.Neighbor{SourceID: sourceID, Record: rec})
	}
	return neighbors, nil
}

func (g *mockGraph) CreateVectorIndex(_ context.Context, desc types.IndexDescriptor) error {
	g.indexes = append(g.indexes, desc)
	return nil
}

func (g *mockGraph) DropIndex(_ context.Context, name string) error {
	out := g.indexes[:0]
	for _, desc := range g.indexes {
		if desc.Name != name {
			out = append(out, desc)
		}
	}
	g.indexes = out
	return nil
}

func (g *mockGraph) ListVectorIndexes(_ context.Context) ([]types.IndexDescriptor, error) {
	if g.failure != nil {
		return nil, g.failure
	}
	return g.indexes, nil
}

func matchesFilters(rec types.Record, filters types.Filters) bool {
	for key, want := range filters {
		if rec.Props[key] != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// keywordEmbedder maps texts onto a fixed vocabulary: one dimension per
// keyword, 1 where the word occurs. Deterministic and order-free, so
// similarity rankings in tests are reproducible.
type keywordEmbedder struct {
	vocab []string
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{vocab: []string{
		"ai", "customer", "service", "chatbot", "payment",
		"mobile", "data", "analytics", "security", "cloud",
	}}
}

func (k *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[strings.Trim(w, ".,!?:;()")] = true
	}
	vector := make([]float32, len(k.vocab))
	for i, kw := range k.vocab {
		if words[kw] {
			vector[i] = 1
		}
	}
	return vector, nil
}

func (k *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := k.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (k *keywordEmbedder) Dimensions() int { return len(k.vocab) }
func (k *keywordEmbedder) Close() error    { return nil }

const docIndexName = "document_description_vector"

// reviewCorpus builds a 15-document graph with reviews, risks and
// recommendations wired the way the review domain stores them.
func reviewCorpus(t *testing.T) (*mockGraph, *Engine) {
	t.Helper()

	g := newMockGraph()
	embed := newKeywordEmbedder()
	ctx := context.Background()

	descriptions := map[string]string{
		"PRD-001": "payment gateway integration for the web checkout",
		"PRD-002": "mobile app redesign with a new navigation flow",
		"PRD-003": "ai customer service assistant for support tickets",
		"PRD-004": "data warehouse migration to the cloud",
		"PRD-005": "security audit logging across all services",
		"PRD-006": "analytics dashboard for marketing campaigns",
		"PRD-007": "ai chatbot to answer customer service questions",
		"PRD-008": "cloud cost reporting and budget alerts",
		"PRD-009": "mobile payment wallet with loyalty points",
		"PRD-010": "internal data catalog with search",
		"PRD-011": "ai service for document summarization",
		"PRD-012": "security incident response workflow",
		"PRD-013": "customer billing portal refresh",
		"PRD-014": "analytics pipeline for clickstream data",
		"PRD-015": "cloud backup automation for databases",
	}
	statuses := map[string]string{"PRD-003": "approved", "PRD-007": "approved", "PRD-011": "rejected"}

	ids := make([]string, 0, len(descriptions))
	for id := range descriptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		desc := descriptions[id]
		status := statuses[id]
		if status == "" {
			status = "approved"
		}
		vec, err := embed.Embed(ctx, desc)
		require.NoError(t, err)
		g.addRecord(docIndexName, types.Record{
			ID:    id,
			Label: LabelDocument,
			Props: map[string]any{
				"prd_id":      id,
				"title":       "Title " + id,
				"description": desc,
				"status":      status,
				"priority":    "high",
			},
		}, vec)
	}

	g.indexes = []types.IndexDescriptor{
		{Name: docIndexName, Label: LabelDocument, Property: "description_embedding", Dimension: embed.Dimensions(), Similarity: types.SimilarityCosine, State: types.IndexStateReady},
		{Name: "review_comment_content_vector", Label: LabelReviewComment, Property: "content_embedding", Dimension: embed.Dimensions(), Similarity: types.SimilarityCosine, State: types.IndexStateReady},
	}

	engine := NewEngine(g, g, embed, Config{}, nil)
	return g, engine
}

func addReview(g *mockGraph, id, department, content, docID string) {
	g.addRecord("", types.Record{
		ID:    id,
		Label: LabelReviewComment,
		Props: map[string]any{
			"comment_id":     id,
			"department":     department,
			"content":        content,
			"recommendation": "approve",
			"risk_level":     "low",
		},
	}, nil)
	g.edges = append(g.edges, edge{from: docID, rel: RelHasReview, to: id})
}

func TestSimilarTopThreeRegression(t *testing.T) {
	_, engine := reviewCorpus(t)

	results, err := engine.Similar(context.Background(), "AI customer service system", 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// PRD-003 hits all three query keywords, PRD-007 adds chatbot noise,
	// PRD-011 only hits two.
	assert.Equal(t, "PRD-003", results[0].Record.ID)
	assert.Equal(t, "PRD-007", results[1].Record.ID)
	assert.Equal(t, "PRD-011", results[2].Record.ID)

	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 3, results[2].Rank)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestSimilarJoinsDecisionContext(t *testing.T) {
	g, engine := reviewCorpus(t)
	g.addRecord("", types.Record{
		ID:    "REC-1",
		Label: LabelRecommendation,
		Props: map[string]any{
			"rec_id":           "REC-1",
			"decision_type":    "approve",
			"confidence_score": 0.92,
			"reasoning":        "similar projects succeeded",
		},
	}, nil)
	g.edges = append(g.edges, edge{from: "PRD-003", rel: RelHasRecommendation, to: "REC-1"})

	results, err := engine.Similar(context.Background(), "AI customer service system", 3, nil)
	require.NoError(t, err)

	require.NotNil(t, results[0].Joined)
	assert.Equal(t, "approve", results[0].Joined["decision"])
	assert.Equal(t, 0.92, results[0].Joined["confidence"])
	assert.Nil(t, results[1].Joined, "documents without a recommendation carry no decision context")
}

func TestSimilarTieBreaksOnID(t *testing.T) {
	g, engine := reviewCorpus(t)
	embed := newKeywordEmbedder()

	// Two extra documents with identical descriptions, identical vectors.
	for _, id := range []string{"PRD-902", "PRD-901"} {
		vec, _ := embed.Embed(context.Background(), "ai customer service everywhere")
		g.addRecord(docIndexName, types.Record{
			ID:    id,
			Label: LabelDocument,
			Props: map[string]any{"prd_id": id, "title": id, "description": "ai customer service everywhere", "status": "approved", "priority": "low"},
		}, vec)
	}

	results, err := engine.Similar(context.Background(), "AI customer service system", 5, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 3)

	// PRD-003, PRD-901 and PRD-902 all score 1.0; ties order by ID.
	assert.Equal(t, "PRD-003", results[0].Record.ID)
	assert.Equal(t, "PRD-901", results[1].Record.ID)
	assert.Equal(t, "PRD-902", results[2].Record.ID)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestSimilarFilteredResultsAllMatch(t *testing.T) {
	_, engine := reviewCorpus(t)

	results, err := engine.Similar(context.Background(), "AI customer service system", 5,
		types.Filters{"status": "approved"})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.Equal(t, "approved", r.Record.StringProp("status"))
	}
	// PRD-011 is rejected and must be filtered out even though it ranks high.
	for _, r := range results {
		assert.NotEqual(t, "PRD-011", r.Record.ID)
	}
}

func TestKnowledgeBaseDepartmentFilter(t *testing.T) {
	g, engine := reviewCorpus(t)
	embed := newKeywordEmbedder()

	contents := []struct {
		id, dept, content string
	}{
		{"RC-01", "Tech", "ai customer service needs a fallback to human agents"},
		{"RC-02", "Tech", "customer service chatbot requires intent analytics"},
		{"RC-03", "Tech", "service reliability depends on cloud capacity"},
		{"RC-04", "Tech", "payment data must stay out of chat logs"},
		{"RC-05", "Finance", "ai customer service budget exceeds this quarter"},
		{"RC-06", "Finance", "customer service headcount savings are unproven"},
		{"RC-07", "HR", "customer service training plan is missing"},
		{"RC-08", "Security", "ai service must pass a security review"},
	}
	for _, c := range contents {
		vec, _ := embed.Embed(context.Background(), c.content)
		g.addRecord("review_comment_content_vector", types.Record{
			ID:    c.id,
			Label: LabelReviewComment,
			Props: map[string]any{"comment_id": c.id, "department": c.dept, "content": c.content},
		}, vec)
	}

	results, err := engine.KnowledgeBase(context.Background(), "AI customer service system",
		LabelReviewComment, 5, types.Filters{"department": "Tech"})
	require.NoError(t, err)
	require.Len(t, results, 4, "only four Tech comments exist")

	for _, r := range results {
		assert.Equal(t, "Tech", r.Record.StringProp("department"))
	}
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestReviewSuggestionsDedupsSharedComments(t *testing.T) {
	g, engine := reviewCorpus(t)

	// S1 is attached to both top documents; S2 only to the second.
	addReview(g, "S1", "Tech", "add human handoff for unresolved tickets", "PRD-003")
	g.edges = append(g.edges, edge{from: "PRD-007", rel: RelHasReview, to: "S1"})
	addReview(g, "S2", "Finance", "budget for model inference costs", "PRD-007")

	results, err := engine.ReviewSuggestions(context.Background(), "AI customer service system", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	seen := map[string]int{}
	for _, r := range results {
		seen[r.Record.ID]++
	}
	assert.Equal(t, 1, seen["S1"], "shared comment appears once")
	assert.Equal(t, 1, seen["S2"])

	// S1 inherits the better document's score (PRD-003 at 1.0).
	assert.Equal(t, "S1", results[0].Record.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Less(t, results[1].Score, results[0].Score)
}

func TestReviewSuggestionsDepartmentRestriction(t *testing.T) {
	g, engine := reviewCorpus(t)
	addReview(g, "S1", "Tech", "tech review", "PRD-003")
	addReview(g, "S2", "Finance", "finance review", "PRD-003")

	results, err := engine.ReviewSuggestions(context.Background(), "AI customer service system", "Finance", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "S2", results[0].Record.ID)
}

func TestIdentifyRisksSeverityTieBreak(t *testing.T) {
	g, engine := reviewCorpus(t)

	addRisk := func(id, severity, docID string) {
		g.addRecord("", types.Record{
			ID:    id,
			Label: LabelRiskAssessment,
			Props: map[string]any{
				"risk_id":             id,
				"risk_category":       "technical",
				"severity":            severity,
				"probability":         0.5,
				"impact":              "service disruption",
				"mitigation_strategy": "define rollback plan",
			},
		}, nil)
		g.edges = append(g.edges, edge{from: docID, rel: RelHasRisk, to: id})
	}

	// Both risks hang off the same document, so they inherit equal scores
	// and order by severity.
	addRisk("R-low", "Low", "PRD-003")
	addRisk("R-high", "High", "PRD-003")
	addRisk("R-other", "Medium", "PRD-007")

	results, err := engine.IdentifyRisks(context.Background(), "AI customer service system", 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "R-high", results[0].Record.ID)
	assert.Equal(t, "R-low", results[1].Record.ID)
	assert.Equal(t, "R-other", results[2].Record.ID)
}

func TestIdentifyRisksDedupAndAttribution(t *testing.T) {
	g, engine := reviewCorpus(t)

	g.addRecord("", types.Record{
		ID:    "R1",
		Label: LabelRiskAssessment,
		Props: map[string]any{"risk_id": "R1", "risk_category": "compliance", "severity": "High", "impact": "audit failure"},
	}, nil)
	g.edges = append(g.edges,
		edge{from: "PRD-003", rel: RelHasRisk, to: "R1"},
		edge{from: "PRD-007", rel: RelHasRisk, to: "R1"},
	)
	addReview(g, "RC-9", "Compliance", "flagged during review", "PRD-003")
	g.edges = append(g.edges, edge{from: "RC-9", rel: RelIdentifiesRisk, to: "R1"})

	results, err := engine.IdentifyRisks(context.Background(), "AI customer service system", 5)
	require.NoError(t, err)
	require.Len(t, results, 1, "risk reachable from two documents appears once")

	assert.Equal(t, "R1", results[0].Record.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9, "keeps the max inherited score")
	require.NotNil(t, results[0].Joined)
	assert.Equal(t, "Compliance", results[0].Joined["identified_by"])
}

func TestHybridJoinsRiskCount(t *testing.T) {
	g, engine := reviewCorpus(t)
	g.addRecord("", types.Record{
		ID:    "R1",
		Label: LabelRiskAssessment,
		Props: map[string]any{"risk_id": "R1", "severity": "High"},
	}, nil)
	g.edges = append(g.edges, edge{from: "PRD-003", rel: RelHasRisk, to: "R1"})

	results, err := engine.Hybrid(context.Background(), "AI customer service system",
		types.Filters{"priority": "high"}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "PRD-003", results[0].Record.ID)
	assert.Equal(t, 1, results[0].Joined["num_risks"])
	assert.Equal(t, 0, results[1].Joined["num_risks"])
}

func TestContextJoinsEverything(t *testing.T) {
	g, engine := reviewCorpus(t)
	addReview(g, "S1", "Tech", "tech review", "PRD-003")
	addReview(g, "S2", "Finance", "finance review", "PRD-003")
	g.addRecord("", types.Record{
		ID:    "R1",
		Label: LabelRiskAssessment,
		Props: map[string]any{"risk_id": "R1", "severity": "High"},
	}, nil)
	g.addRecord("", types.Record{
		ID:    "REC-1",
		Label: LabelRecommendation,
		Props: map[string]any{"rec_id": "REC-1", "decision_type": "approve"},
	}, nil)
	g.edges = append(g.edges,
		edge{from: "PRD-003", rel: RelHasRisk, to: "R1"},
		edge{from: "PRD-003", rel: RelHasRecommendation, to: "REC-1"},
	)

	result, err := engine.Context(context.Background(), "PRD-003")
	require.NoError(t, err)

	assert.Equal(t, "PRD-003", result.Document.ID)
	assert.Len(t, result.Reviews, 2)
	assert.Len(t, result.Risks, 1)
	require.NotNil(t, result.Recommendation)
	assert.Equal(t, "approve", result.Recommendation.StringProp("decision_type"))
}

func TestContextUnknownDocument(t *testing.T) {
	_, engine := reviewCorpus(t)
	_, err := engine.Context(context.Background(), "PRD-404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidTopK(t *testing.T) {
	_, engine := reviewCorpus(t)

	for _, topK := range []int{0, -1, 101} {
		_, err := engine.Similar(context.Background(), "anything", topK, nil)
		require.Error(t, err, "top_k %d", topK)
		assert.True(t, errors.Is(err, ErrInvalidParameter))
	}
}

func TestUnknownFilterKeyRejected(t *testing.T) {
	_, engine := reviewCorpus(t)

	_, err := engine.Similar(context.Background(), "anything", 5, types.Filters{"color": "blue"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	// Wrong value type for a known key.
	_, err = engine.Similar(context.Background(), "anything", 5, types.Filters{"status": 7})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestIndexNotReady(t *testing.T) {
	g, engine := reviewCorpus(t)
	g.indexes[0].State = types.IndexStateCreating

	_, err := engine.Similar(context.Background(), "anything", 5, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexNotReady))

	g.indexes = nil
	_, err = engine.Similar(context.Background(), "anything", 5, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexNotReady), "absent index reads as not ready")
}

func TestStoreFailureSurfaces(t *testing.T) {
	g, engine := reviewCorpus(t)
	g.failure = fmt.Errorf("neo4j: connection lost")

	results, err := engine.Similar(context.Background(), "anything", 5, nil)
	require.Error(t, err)
	assert.Nil(t, results, "store failures are never masked as empty results")
	assert.Contains(t, err.Error(), "connection lost")
}

func TestDispatch(t *testing.T) {
	g, engine := reviewCorpus(t)
	addReview(g, "S1", "Tech", "tech review", "PRD-003")

	ctx := context.Background()

	results, err := engine.Dispatch(ctx, SimilarSearch{Text: "AI customer service system", TopK: 3})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = engine.Dispatch(ctx, SuggestionSearch{Text: "AI customer service system", TopK: 5})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = engine.Dispatch(ctx, RiskSearch{Text: "AI customer service system", TopK: 5})
	require.NoError(t, err)

	_, err = engine.Dispatch(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestErrorFormatting(t *testing.T) {
	err := opErr("similar", ErrIndexNotReady, nil, "index", "document_description_vector", "state", "creating")
	msg := err.Error()
	assert.Contains(t, msg, "recall similar")
	assert.Contains(t, msg, "index=document_description_vector")
	assert.Contains(t, msg, "state=creating")
	assert.Contains(t, msg, "vector index not ready")
}
