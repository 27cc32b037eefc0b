package recall

import (
	"github.com/soundprediction/graphrecall/pkg/index"
)

// Default record labels of the review domain.
const (
	LabelDocument       = "Document"
	LabelReviewComment  = "ReviewComment"
	LabelRiskAssessment = "RiskAssessment"
	LabelDepartment     = "Department"
	LabelRecommendation = "DecisionRecommendation"
)

// Relationship types between the review-domain labels.
const (
	RelHasReview         = "HAS_REVIEW"
	RelHasRisk           = "HAS_RISK"
	RelIdentifiesRisk    = "IDENTIFIES_RISK"
	RelProvidesReview    = "PROVIDES_REVIEW"
	RelHasRecommendation = "HAS_RECOMMENDATION"
)

// DefaultMaxTopK is the ceiling on caller-supplied top-k values.
const DefaultMaxTopK = 100

// LabelConfig binds a record label to its identifier, text and vector
// properties, its vector index, and the filters it accepts.
type LabelConfig struct {
	Label      string
	IDProp     string
	TextProp   string
	VectorProp string
	Index      string
	Filters    FilterSchema
}

// Config holds the engine's label registry and limits.
type Config struct {
	// Labels maps record labels to their retrieval configuration.
	Labels map[string]LabelConfig

	// MaxTopK caps caller-supplied top-k values (default 100).
	MaxTopK int

	// RiskCandidates is the candidate pool size when surfacing risks
	// through similar documents (default 20).
	RiskCandidates int
}

// DefaultConfig returns the review-domain configuration: documents with
// their reviews, risks, recommendations and departments.
func DefaultConfig() Config {
	labels := map[string]LabelConfig{
		LabelDocument: {
			Label:      LabelDocument,
			IDProp:     "prd_id",
			TextProp:   "description",
			VectorProp: "description_embedding",
			Index:      index.NormalizeIndexName(LabelDocument, "description_embedding"),
			Filters: FilterSchema{
				"status":   FilterString,
				"priority": FilterString,
			},
		},
		LabelReviewComment: {
			Label:      LabelReviewComment,
			IDProp:     "comment_id",
			TextProp:   "content",
			VectorProp: "content_embedding",
			Index:      index.NormalizeIndexName(LabelReviewComment, "content_embedding"),
			Filters: FilterSchema{
				"department": FilterString,
				"risk_level": FilterString,
			},
		},
		LabelRiskAssessment: {
			Label:      LabelRiskAssessment,
			IDProp:     "risk_id",
			TextProp:   "impact",
			VectorProp: "impact_embedding",
			Index:      index.NormalizeIndexName(LabelRiskAssessment, "impact_embedding"),
			Filters: FilterSchema{
				"severity":      FilterString,
				"risk_category": FilterString,
			},
		},
		LabelDepartment: {
			Label:      LabelDepartment,
			IDProp:     "dept_id",
			TextProp:   "dept_name",
			VectorProp: "name_embedding",
			Index:      index.NormalizeIndexName(LabelDepartment, "name_embedding"),
			Filters:    FilterSchema{},
		},
	}
	return Config{
		Labels:         labels,
		MaxTopK:        DefaultMaxTopK,
		RiskCandidates: 20,
	}
}

func (c Config) withDefaults() Config {
	if c.Labels == nil {
		c.Labels = DefaultConfig().Labels
	}
	if c.MaxTopK <= 0 {
		c.MaxTopK = DefaultMaxTopK
	}
	if c.RiskCandidates <= 0 {
		c.RiskCandidates = 20
	}
	return c
}
