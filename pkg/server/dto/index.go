package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// Index validation errors
var (
	ErrEmptyIndexName = errors.New("name cannot be empty")
	ErrEmptyProperty  = errors.New("property cannot be empty")
	ErrBadDimension   = errors.New("dimension must be positive")
	ErrBadBatchSize   = errors.New("batch_size must be positive")
)

// CreateIndexRequest represents a request to create a named vector index
type CreateIndexRequest struct {
	Name       string `json:"name,omitempty"`
	Label      string `json:"label" binding:"required"`
	Property   string `json:"property" binding:"required"`
	Dimension  int    `json:"dimension" binding:"required"`
	Similarity string `json:"similarity,omitempty"`
}

// Validate performs validation on CreateIndexRequest
func (r *CreateIndexRequest) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if strings.TrimSpace(r.Property) == "" {
		return ErrEmptyProperty
	}
	if r.Dimension <= 0 {
		return ErrBadDimension
	}
	return nil
}

// Descriptor converts the request into an index descriptor
func (r *CreateIndexRequest) Descriptor() types.IndexDescriptor {
	return types.IndexDescriptor{
		Name:       r.Name,
		Label:      r.Label,
		Property:   r.Property,
		Dimension:  r.Dimension,
		Similarity: r.Similarity,
	}
}

// ListIndexesResponse carries the known vector indexes
type ListIndexesResponse struct {
	Indexes []types.IndexDescriptor `json:"indexes"`
	Count   int                     `json:"count"`
}

// BackfillRequest represents a request to embed records missing vectors
type BackfillRequest struct {
	Label      string `json:"label" binding:"required"`
	IDProp     string `json:"id_prop" binding:"required"`
	TextProp   string `json:"text_prop" binding:"required"`
	VectorProp string `json:"vector_prop" binding:"required"`
	BatchSize  int    `json:"batch_size,omitempty"`
}

// Validate performs validation on BackfillRequest
func (r *BackfillRequest) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	for _, prop := range []string{r.IDProp, r.TextProp, r.VectorProp} {
		if strings.TrimSpace(prop) == "" {
			return ErrEmptyProperty
		}
	}
	if r.BatchSize < 0 {
		return ErrBadBatchSize
	}
	return nil
}

// BackfillResponse reports how many records were embedded
type BackfillResponse struct {
	Embedded int `json:"embedded"`
}
