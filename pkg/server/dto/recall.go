package dto

import (
	"strings"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// SimilarRequest represents a request for documents similar to a query text
type SimilarRequest struct {
	Text    string        `json:"text" binding:"required"`
	TopK    int           `json:"top_k,omitempty"`
	Filters types.Filters `json:"filters,omitempty"`
}

// Validate performs validation on SimilarRequest
func (r *SimilarRequest) Validate() error {
	if err := validateText(r.Text); err != nil {
		return err
	}
	return normalizeTopK(&r.TopK)
}

// SuggestionsRequest represents a request for review suggestions
type SuggestionsRequest struct {
	Text       string `json:"text" binding:"required"`
	Department string `json:"department,omitempty"`
	TopK       int    `json:"top_k,omitempty"`
}

// Validate performs validation on SuggestionsRequest
func (r *SuggestionsRequest) Validate() error {
	if err := validateText(r.Text); err != nil {
		return err
	}
	return normalizeTopK(&r.TopK)
}

// RisksRequest represents a request for risk surfacing
type RisksRequest struct {
	Text string `json:"text" binding:"required"`
	TopK int    `json:"top_k,omitempty"`
}

// Validate performs validation on RisksRequest
func (r *RisksRequest) Validate() error {
	if err := validateText(r.Text); err != nil {
		return err
	}
	return normalizeTopK(&r.TopK)
}

// KnowledgeRequest represents a direct search over one configured label
type KnowledgeRequest struct {
	Text    string        `json:"text" binding:"required"`
	Label   string        `json:"label" binding:"required"`
	TopK    int           `json:"top_k,omitempty"`
	Filters types.Filters `json:"filters,omitempty"`
}

// Validate performs validation on KnowledgeRequest
func (r *KnowledgeRequest) Validate() error {
	if err := validateText(r.Text); err != nil {
		return err
	}
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	return normalizeTopK(&r.TopK)
}

// HybridRequest represents a combined vector plus predicate search
type HybridRequest struct {
	Text    string        `json:"text" binding:"required"`
	Filters types.Filters `json:"filters,omitempty"`
	TopK    int           `json:"top_k,omitempty"`
}

// Validate performs validation on HybridRequest
func (r *HybridRequest) Validate() error {
	if err := validateText(r.Text); err != nil {
		return err
	}
	return normalizeTopK(&r.TopK)
}

// EmbedRequest represents a request to embed raw texts
type EmbedRequest struct {
	Texts []string `json:"texts" binding:"required"`
}

// Validate performs validation on EmbedRequest
func (r *EmbedRequest) Validate() error {
	if len(r.Texts) == 0 {
		return ErrEmptyTexts
	}
	if len(r.Texts) > MaxTextsCount {
		return ErrTooManyTexts
	}
	for _, text := range r.Texts {
		if len(text) > MaxTextLength {
			return ErrTextTooLong
		}
	}
	return nil
}

// EmbedResponse carries embedding vectors in input order
type EmbedResponse struct {
	Vectors   [][]float32 `json:"vectors"`
	Dimension int         `json:"dimension"`
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if len(text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// normalizeTopK applies the default and rejects out-of-range values.
// Zero means the caller wants the default.
func normalizeTopK(topK *int) error {
	if *topK == 0 {
		*topK = DefaultTopK
		return nil
	}
	if *topK < 1 || *topK > MaxTopK {
		return ErrInvalidTopK
	}
	return nil
}
