package recall

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrecall/pkg/types"
)

func result(id string, score float64, rank int, props map[string]any, joined map[string]any) types.RecallResult {
	return types.RecallResult{
		Record: types.Record{ID: id, Props: props},
		Score:  score,
		Rank:   rank,
		Joined: joined,
	}
}

func TestFormatterEmptyViewsAreNonNil(t *testing.T) {
	f := NewFormatter()

	similar := f.SimilarDocuments(nil)
	require.NotNil(t, similar.Results)
	assert.Empty(t, similar.Results)

	suggestions := f.Suggestions(nil)
	require.NotNil(t, suggestions.Departments)

	risks := f.Risks(nil)
	require.NotNil(t, risks.Risks)

	kb := f.KnowledgeBase(LabelReviewComment, "content", "department", nil)
	require.NotNil(t, kb.Groups)

	hybrid := f.Hybrid(nil)
	require.NotNil(t, hybrid.Results)

	// The JSON shape must be [] rather than null.
	data, err := json.Marshal(similar)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(data))
}

func TestFormatterSuggestionsGroupByDepartment(t *testing.T) {
	f := NewFormatter()
	results := []types.RecallResult{
		result("S1", 0.9, 1, map[string]any{"department": "Tech", "content": "add handoff"}, map[string]any{"source_document": "Title A"}),
		result("S2", 0.8, 2, map[string]any{"department": "Finance", "content": "check budget"}, nil),
		result("S3", 0.7, 3, map[string]any{"department": "Tech", "content": "log intents"}, nil),
	}

	view := f.Suggestions(results)
	require.Len(t, view.Departments, 2)

	// alphabetical groups, rank order within a group
	assert.Equal(t, "Finance", view.Departments[0].Department)
	assert.Equal(t, "Tech", view.Departments[1].Department)
	require.Len(t, view.Departments[1].Suggestions, 2)
	assert.Equal(t, "add handoff", view.Departments[1].Suggestions[0].Content)
	assert.Equal(t, "Title A", view.Departments[1].Suggestions[0].SourceDocument)

	total := 0
	for _, d := range view.Departments {
		total += len(d.Suggestions)
	}
	assert.Equal(t, len(results), total, "grouping partitions, never discards")
}

func TestFormatterKnowledgeBasePartitions(t *testing.T) {
	f := NewFormatter()
	results := []types.RecallResult{
		result("K1", 0.9, 1, map[string]any{"content": "a", "department": "Tech"}, nil),
		result("K2", 0.8, 2, map[string]any{"content": "b"}, nil),
	}

	view := f.KnowledgeBase(LabelReviewComment, "content", "department", results)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "", view.Groups[0].Group, "records without the group attribute keep their own partition")
	assert.Equal(t, "Tech", view.Groups[1].Group)
}

func TestFormatterRisks(t *testing.T) {
	f := NewFormatter()
	results := []types.RecallResult{
		result("R1", 0.95, 1, map[string]any{
			"risk_category":       "compliance",
			"severity":            "High",
			"probability":         0.7,
			"impact":              "audit failure",
			"mitigation_strategy": "engage legal early",
		}, map[string]any{"identified_by": "Compliance", "source_document": "Title B"}),
	}

	view := f.Risks(results)
	require.Len(t, view.Risks, 1)
	assert.Equal(t, "compliance", view.Risks[0].Category)
	assert.Equal(t, "High", view.Risks[0].Severity)
	assert.Equal(t, 0.7, view.Risks[0].Probability)
	assert.Equal(t, "Compliance", view.Risks[0].IdentifiedBy)

	text := f.RenderRisks(view)
	assert.Contains(t, text, "compliance - High")
	assert.Contains(t, text, "engage legal early")
}

func TestRenderEmptyMessages(t *testing.T) {
	f := NewFormatter()
	assert.Equal(t, "No similar documents found.", f.RenderSimilarDocuments(SimilarDocumentsView{}))
	assert.Equal(t, "No review suggestions found.", f.RenderSuggestions(SuggestionsView{}))
	assert.Equal(t, "No potential risks identified.", f.RenderRisks(RisksView{}))
	assert.Contains(t, f.RenderKnowledgeBase(KnowledgeBaseView{Label: "ReviewComment"}), "No ReviewComment knowledge")
}

func TestRenderSimilarDocuments(t *testing.T) {
	f := NewFormatter()
	view := f.SimilarDocuments([]types.RecallResult{
		result("PRD-003", 0.98, 1, map[string]any{
			"title":       "AI assistant",
			"description": "ai customer service assistant",
			"status":      "approved",
			"priority":    "high",
		}, map[string]any{"decision": "approve", "confidence": 0.92}),
	})

	text := f.RenderSimilarDocuments(view)
	assert.Contains(t, text, "[1] AI assistant")
	assert.Contains(t, text, "Similarity: 0.9800")
	assert.Contains(t, text, "Decision: approve (confidence 0.92)")
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 150))

	// "héllo" is 6 bytes; cutting at 2 lands inside the two-byte é and
	// must back off to the rune start.
	out := truncate("héllo", 2)
	assert.Equal(t, "h...", out)
	assert.True(t, utf8.ValidString(out))

	long := strings.Repeat("é", 100)
	out = truncate(long, 151)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("é", 75)+"...", out)
}
