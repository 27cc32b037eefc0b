package dto

import (
	"errors"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// Validation errors
var (
	ErrEmptyText    = errors.New("text cannot be empty")
	ErrTextTooLong  = errors.New("text exceeds maximum length (32KB)")
	ErrInvalidTopK  = errors.New("top_k must be between 1 and 100")
	ErrEmptyLabel   = errors.New("label cannot be empty")
	ErrEmptyTexts   = errors.New("texts cannot be empty")
	ErrTooManyTexts = errors.New("texts count exceeds maximum (500)")
)

// MaxFieldLengths defines maximum sizes for request fields to prevent abuse
const (
	MaxTextLength = 32 * 1024
	MaxTopK       = 100
	MaxTextsCount = 500
	DefaultTopK   = 5
)

// Result represents a generic API result
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// RecallResponse wraps a ranked result list
type RecallResponse struct {
	Results []types.RecallResult `json:"results"`
	Count   int                  `json:"count"`
}

// NewRecallResponse builds a response with a non-nil results slice
func NewRecallResponse(results []types.RecallResult) RecallResponse {
	if results == nil {
		results = []types.RecallResult{}
	}
	return RecallResponse{Results: results, Count: len(results)}
}
