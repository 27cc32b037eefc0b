package recall

import (
	"context"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// Scenario is a closed set of recall request variants. Each variant carries
// exactly the parameters its scenario accepts, so a request cannot mix,
// say, a department filter into a plain similarity search.
type Scenario interface {
	scenario()
}

// SimilarSearch finds documents similar to Text.
type SimilarSearch struct {
	Text    string
	TopK    int
	Filters types.Filters
}

// SuggestionSearch aggregates review comments from similar documents,
// optionally restricted to one department.
type SuggestionSearch struct {
	Text       string
	Department string
	TopK       int
}

// RiskSearch surfaces risk assessments attached to similar documents.
type RiskSearch struct {
	Text string
	TopK int
}

// KnowledgeSearch queries an arbitrary configured label's index.
type KnowledgeSearch struct {
	Text    string
	Label   string
	TopK    int
	Filters types.Filters
}

// HybridSearch combines document similarity with predicate filters.
type HybridSearch struct {
	Text    string
	Filters types.Filters
	TopK    int
}

func (SimilarSearch) scenario()    {}
func (SuggestionSearch) scenario() {}
func (RiskSearch) scenario()       {}
func (KnowledgeSearch) scenario()  {}
func (HybridSearch) scenario()     {}

// Dispatch routes a scenario value to its engine operation. A nil scenario
// or an unknown variant is an ErrInvalidParameter.
func (e *Engine) Dispatch(ctx context.Context, s Scenario) ([]types.RecallResult, error) {
	switch v := s.(type) {
	case SimilarSearch:
		return e.Similar(ctx, v.Text, v.TopK, v.Filters)
	case SuggestionSearch:
		return e.ReviewSuggestions(ctx, v.Text, v.Department, v.TopK)
	case RiskSearch:
		return e.IdentifyRisks(ctx, v.Text, v.TopK)
	case KnowledgeSearch:
		return e.KnowledgeBase(ctx, v.Text, v.Label, v.TopK, v.Filters)
	case HybridSearch:
		return e.Hybrid(ctx, v.Text, v.Filters, v.TopK)
	default:
		return nil, opErr("dispatch", ErrInvalidParameter, nil, "scenario", s)
	}
}
