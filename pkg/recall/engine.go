package recall

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/soundprediction/graphrecall/pkg/driver"
	"github.com/soundprediction/graphrecall/pkg/embedder"
	"github.com/soundprediction/graphrecall/pkg/types"
)

// Engine runs recall scenarios against a graph store and an embedding client.
type Engine struct {
	store   driver.GraphReader
	catalog driver.IndexStore
	embed   embedder.Client
	config  Config
	logger  *slog.Logger
}

// NewEngine creates a recall engine. A zero Config gets the review-domain
// defaults.
func NewEngine(store driver.GraphReader, catalog driver.IndexStore, embed embedder.Client, config Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		catalog: catalog,
		embed:   embed,
		config:  config.withDefaults(),
		logger:  logger,
	}
}

// Similar finds the documents most similar to text, with optional predicate
// filters applied before truncation. Each result carries its decision
// context when the document has one.
func (e *Engine) Similar(ctx context.Context, text string, topK int, filters types.Filters) ([]types.RecallResult, error) {
	const op = "similar"

	scored, cfg, err := e.search(ctx, op, LabelDocument, text, topK, filters)
	if err != nil {
		return nil, err
	}
	sortScored(scored)

	joined, err := e.joinRecommendations(ctx, op, cfg, scored)
	if err != nil {
		return nil, err
	}
	return finalize(scored, topK, joined), nil
}

// ReviewSuggestions aggregates historical review comments attached to the
// documents most similar to text. Comments inherit the score of their
// best-matching document; a non-empty department keeps only that
// department's comments. Grouping happens in the formatter, never here.
func (e *Engine) ReviewSuggestions(ctx context.Context, text, department string, topK int) ([]types.RecallResult, error) {
	const op = "review suggestions"

	scored, cfg, err := e.search(ctx, op, LabelDocument, text, topK, nil)
	if err != nil {
		return nil, err
	}

	reviewCfg := e.config.Labels[LabelReviewComment]
	neighbors, err := e.store.Traverse(ctx, driver.Traversal{
		SourceLabel:  cfg.Label,
		SourceIDs:    recordIDs(scored),
		SourceIDProp: cfg.IDProp,
		RelType:      RelHasReview,
		Direction:    driver.Outgoing,
		TargetLabel:  LabelReviewComment,
		TargetIDProp: reviewCfg.IDProp,
	})
	if err != nil {
		return nil, opErr(op, nil, err)
	}

	scoreByID := scoreIndex(scored)
	titleByID := titleIndex(scored)

	var reviews []types.ScoredRecord
	joined := make(map[string]map[string]any)
	for _, n := range neighbors {
		if department != "" && n.Record.StringProp("department") != department {
			continue
		}
		score := scoreByID[n.SourceID]
		reviews = append(reviews, types.ScoredRecord{Record: n.Record, Score: score})
		if have, ok := joined[n.Record.ID]; !ok || score > have["similarity"].(float64) {
			joined[n.Record.ID] = map[string]any{
				"source_document": titleByID[n.SourceID],
				"similarity":      score,
			}
		}
	}

	reviews = dedupeMax(reviews)
	return finalize(reviews, topK, joined), nil
}

// IdentifyRisks surfaces risk assessments attached to the documents most
// similar to text. Risks inherit their document's score, duplicates keep
// their maximum, and equal scores order by severity before record ID. Each
// risk carries the department that identified it, when a review did.
func (e *Engine) IdentifyRisks(ctx context.Context, text string, topK int) ([]types.RecallResult, error) {
	const op = "identify risks"

	if err := e.validateTopK(op, topK); err != nil {
		return nil, err
	}

	// The candidate pool is wider than topK so risks on slightly less
	// similar documents still surface.
	scored, cfg, err := e.search(ctx, op, LabelDocument, text, e.config.RiskCandidates, nil)
	if err != nil {
		return nil, err
	}

	riskCfg := e.config.Labels[LabelRiskAssessment]
	neighbors, err := e.store.Traverse(ctx, driver.Traversal{
		SourceLabel:  cfg.Label,
		SourceIDs:    recordIDs(scored),
		SourceIDProp: cfg.IDProp,
		RelType:      RelHasRisk,
		Direction:    driver.Outgoing,
		TargetLabel:  LabelRiskAssessment,
		TargetIDProp: riskCfg.IDProp,
	})
	if err != nil {
		return nil, opErr(op, nil, err)
	}

	scoreByID := scoreIndex(scored)
	titleByID := titleIndex(scored)

	var risks []types.ScoredRecord
	joined := make(map[string]map[string]any)
	for _, n := range neighbors {
		score := scoreByID[n.SourceID]
		risks = append(risks, types.ScoredRecord{Record: n.Record, Score: score})
		if have, ok := joined[n.Record.ID]; !ok || score > have["similarity"].(float64) {
			joined[n.Record.ID] = map[string]any{
				"source_document": titleByID[n.SourceID],
				"similarity":      score,
			}
		}
	}
	risks = dedupeMax(risks)
	sortRisksBySeverity(risks)

	if err := e.joinRiskAttribution(ctx, op, riskCfg, risks, joined); err != nil {
		return nil, err
	}
	return finalize(risks, topK, joined), nil
}

// KnowledgeBase searches any configured label's index with optional filters.
// Partitioning by a group attribute is a formatting concern; every match is
// returned.
func (e *Engine) KnowledgeBase(ctx context.Context, text, label string, topK int, filters types.Filters) ([]types.RecallResult, error) {
	const op = "knowledge base"

	scored, _, err := e.search(ctx, op, label, text, topK, filters)
	if err != nil {
		return nil, err
	}
	sortScored(scored)
	return finalize(scored, topK, nil), nil
}

// Hybrid combines vector similarity over documents with predicate filters,
// joining each result's decision and risk count.
func (e *Engine) Hybrid(ctx context.Context, text string, filters types.Filters, topK int) ([]types.RecallResult, error) {
	const op = "hybrid"

	scored, cfg, err := e.search(ctx, op, LabelDocument, text, topK, filters)
	if err != nil {
		return nil, err
	}
	sortScored(scored)

	joined, err := e.joinRecommendations(ctx, op, cfg, scored)
	if err != nil {
		return nil, err
	}

	riskCfg := e.config.Labels[LabelRiskAssessment]
	neighbors, err := e.store.Traverse(ctx, driver.Traversal{
		SourceLabel:  cfg.Label,
		SourceIDs:    recordIDs(scored),
		SourceIDProp: cfg.IDProp,
		RelType:      RelHasRisk,
		Direction:    driver.Outgoing,
		TargetLabel:  LabelRiskAssessment,
		TargetIDProp: riskCfg.IDProp,
	})
	if err != nil {
		return nil, opErr(op, nil, err)
	}

	riskCount := make(map[string]int)
	for _, n := range neighbors {
		riskCount[n.SourceID]++
	}
	for _, s := range scored {
		m := joined[s.Record.ID]
		if m == nil {
			m = map[string]any{}
			joined[s.Record.ID] = m
		}
		m["num_risks"] = riskCount[s.Record.ID]
	}

	return finalize(scored, topK, joined), nil
}

// DocumentContext is the full joined context of one document.
type DocumentContext struct {
	Document       types.Record   `json:"document"`
	Reviews        []types.Record `json:"reviews"`
	Risks          []types.Record `json:"risks"`
	Recommendation *types.Record  `json:"recommendation,omitempty"`
}

// Context loads one document with all its reviews, risks and the decision
// recommendation.
func (e *Engine) Context(ctx context.Context, documentID string) (*DocumentContext, error) {
	const op = "context"

	cfg, err := e.labelConfig(op, LabelDocument)
	if err != nil {
		return nil, err
	}

	docs, err := e.store.FindRecords(ctx, cfg.Label, cfg.IDProp, types.Filters{cfg.IDProp: documentID}, 1)
	if err != nil {
		return nil, opErr(op, nil, err, "document", documentID)
	}
	if len(docs) == 0 {
		return nil, opErr(op, ErrNotFound, nil, "document", documentID)
	}

	result := &DocumentContext{
		Document: docs[0],
		Reviews:  []types.Record{},
		Risks:    []types.Record{},
	}

	hops := []struct {
		rel    string
		target string
		idProp string
		sink   func(types.Record)
	}{
		{RelHasReview, LabelReviewComment, "comment_id", func(r types.Record) { result.Reviews = append(result.Reviews, r) }},
		{RelHasRisk, LabelRiskAssessment, "risk_id", func(r types.Record) { result.Risks = append(result.Risks, r) }},
		{RelHasRecommendation, LabelRecommendation, "rec_id", func(r types.Record) { rec := r; result.Recommendation = &rec }},
	}
	for _, hop := range hops {
		neighbors, err := e.store.Traverse(ctx, driver.Traversal{
			SourceLabel:  cfg.Label,
			SourceIDs:    []string{documentID},
			SourceIDProp: cfg.IDProp,
			RelType:      hop.rel,
			Direction:    driver.Outgoing,
			TargetLabel:  hop.target,
			TargetIDProp: hop.idProp,
		})
		if err != nil {
			return nil, opErr(op, nil, err, "document", documentID, "relationship", hop.rel)
		}
		for _, n := range neighbors {
			hop.sink(n.Record)
		}
	}
	return result, nil
}

// search is the shared scenario mechanism: validate parameters, check the
// index is ready, embed the query and run the top-k vector search.
func (e *Engine) search(ctx context.Context, op, label, text string, topK int, filters types.Filters) ([]types.ScoredRecord, LabelConfig, error) {
	if err := e.validateTopK(op, topK); err != nil {
		return nil, LabelConfig{}, err
	}
	cfg, err := e.labelConfig(op, label)
	if err != nil {
		return nil, LabelConfig{}, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, LabelConfig{}, opErr(op, ErrInvalidParameter, fmt.Errorf("query text is empty"))
	}
	if err := cfg.Filters.Validate(op, filters); err != nil {
		return nil, LabelConfig{}, err
	}
	if err := e.requireReady(ctx, op, cfg); err != nil {
		return nil, LabelConfig{}, err
	}

	vector, err := e.embed.Embed(ctx, text)
	if err != nil {
		return nil, LabelConfig{}, opErr(op, nil, err, "index", cfg.Index)
	}

	scored, err := e.store.VectorTopK(ctx, driver.VectorQuery{
		Index:   cfg.Index,
		Vector:  vector,
		K:       topK,
		IDProp:  cfg.IDProp,
		Filters: filters,
	})
	if err != nil {
		return nil, LabelConfig{}, opErr(op, nil, err, "index", cfg.Index)
	}

	e.logger.Debug("vector search", "op", op, "index", cfg.Index, "k", topK, "hits", len(scored))
	return scored, cfg, nil
}

func (e *Engine) validateTopK(op string, topK int) error {
	if topK <= 0 || topK > e.config.MaxTopK {
		return opErr(op, ErrInvalidParameter, nil, "top_k", topK, "max", e.config.MaxTopK)
	}
	return nil
}

func (e *Engine) labelConfig(op, label string) (LabelConfig, error) {
	cfg, ok := e.config.Labels[label]
	if !ok {
		return LabelConfig{}, opErr(op, ErrInvalidParameter, nil, "label", label)
	}
	return cfg, nil
}

// requireReady fails unless the scenario's index exists and is online.
// Readiness is read live from the store so an index dropped out-of-band is
// caught here instead of surfacing as a store failure.
func (e *Engine) requireReady(ctx context.Context, op string, cfg LabelConfig) error {
	indexes, err := e.catalog.ListVectorIndexes(ctx)
	if err != nil {
		return opErr(op, nil, err, "index", cfg.Index)
	}
	for _, desc := range indexes {
		if desc.Name != cfg.Index {
			continue
		}
		if desc.State != types.IndexStateReady {
			return opErr(op, ErrIndexNotReady, nil, "index", cfg.Index, "state", string(desc.State))
		}
		return nil
	}
	return opErr(op, ErrIndexNotReady, nil, "index", cfg.Index, "state", "absent")
}

// joinRecommendations attaches each document's decision context.
func (e *Engine) joinRecommendations(ctx context.Context, op string, cfg LabelConfig, scored []types.ScoredRecord) (map[string]map[string]any, error) {
	joined := make(map[string]map[string]any)
	if len(scored) == 0 {
		return joined, nil
	}

	neighbors, err := e.store.Traverse(ctx, driver.Traversal{
		SourceLabel:  cfg.Label,
		SourceIDs:    recordIDs(scored),
		SourceIDProp: cfg.IDProp,
		RelType:      RelHasRecommendation,
		Direction:    driver.Outgoing,
		TargetLabel:  LabelRecommendation,
		TargetIDProp: "rec_id",
	})
	if err != nil {
		return nil, opErr(op, nil, err)
	}

	for _, n := range neighbors {
		joined[n.SourceID] = map[string]any{
			"decision":   n.Record.StringProp("decision_type"),
			"confidence": n.Record.FloatProp("confidence_score"),
			"reasoning":  n.Record.StringProp("reasoning"),
		}
	}
	return joined, nil
}

// joinRiskAttribution records which department's review identified each risk.
func (e *Engine) joinRiskAttribution(ctx context.Context, op string, riskCfg LabelConfig, risks []types.ScoredRecord, joined map[string]map[string]any) error {
	if len(risks) == 0 {
		return nil
	}

	neighbors, err := e.store.Traverse(ctx, driver.Traversal{
		SourceLabel:  riskCfg.Label,
		SourceIDs:    recordIDs(risks),
		SourceIDProp: riskCfg.IDProp,
		RelType:      RelIdentifiesRisk,
		Direction:    driver.Incoming,
		TargetLabel:  LabelReviewComment,
		TargetIDProp: "comment_id",
	})
	if err != nil {
		return opErr(op, nil, err)
	}

	for _, n := range neighbors {
		m := joined[n.SourceID]
		if m == nil {
			m = map[string]any{}
			joined[n.SourceID] = m
		}
		m["identified_by"] = n.Record.StringProp("department")
	}
	return nil
}

// severityRank orders severity strings for tie-breaking; unknown values rank
// lowest.
func severityRank(severity string) int {
	switch strings.ToLower(severity) {
	case "critical":
		return 4
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	}
	return 0
}

// sortRisksBySeverity orders by score descending, then severity descending,
// then record ID ascending.
func sortRisksBySeverity(risks []types.ScoredRecord) {
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].Score != risks[j].Score {
			return risks[i].Score > risks[j].Score
		}
		si, sj := severityRank(risks[i].Record.StringProp("severity")), severityRank(risks[j].Record.StringProp("severity"))
		if si != sj {
			return si > sj
		}
		return risks[i].Record.ID < risks[j].Record.ID
	})
}

// finalize truncates, ranks and attaches joined attributes.
func finalize(scored []types.ScoredRecord, topK int, joined map[string]map[string]any) []types.RecallResult {
	results := toResults(scored, topK)
	if joined != nil {
		for i := range results {
			if m, ok := joined[results[i].Record.ID]; ok {
				results[i].Joined = m
			}
		}
	}
	return results
}

func recordIDs(scored []types.ScoredRecord) []string {
	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.Record.ID
	}
	return ids
}

func scoreIndex(scored []types.ScoredRecord) map[string]float64 {
	byID := make(map[string]float64, len(scored))
	for _, s := range scored {
		if have, ok := byID[s.Record.ID]; !ok || s.Score > have {
			byID[s.Record.ID] = s.Score
		}
	}
	return byID
}

func titleIndex(scored []types.ScoredRecord) map[string]string {
	byID := make(map[string]string, len(scored))
	for _, s := range scored {
		byID[s.Record.ID] = s.Record.StringProp("title")
	}
	return byID
}
