package types

import (
	"fmt"
	"strings"
)

// SimilarityCosine is the only similarity function the subsystem creates
// indexes with. The store may report others for indexes created out-of-band.
const SimilarityCosine = "cosine"

// IndexState describes the lifecycle state of a vector index as reported by
// the graph store.
type IndexState string

const (
	// IndexStateCreating means the index exists but is still populating.
	IndexStateCreating IndexState = "creating"
	// IndexStateReady means the index is online and queryable.
	IndexStateReady IndexState = "ready"
	// IndexStateFailed means the index failed to build.
	IndexStateFailed IndexState = "failed"
)

// IndexDescriptor binds a label/property pair to a fixed-dimension vector
// index. Name is unique within the store.
type IndexDescriptor struct {
	Name       string     `json:"name"`
	Label      string     `json:"label"`
	Property   string     `json:"property"`
	Dimension  int        `json:"dimension"`
	Similarity string     `json:"similarity"`
	State      IndexState `json:"state,omitempty"`
}

// Validate checks that the descriptor is complete enough to create an index.
func (d IndexDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("index descriptor: name is required")
	}
	if strings.TrimSpace(d.Label) == "" {
		return fmt.Errorf("index descriptor %q: label is required", d.Name)
	}
	if strings.TrimSpace(d.Property) == "" {
		return fmt.Errorf("index descriptor %q: property is required", d.Name)
	}
	if d.Dimension <= 0 {
		return fmt.Errorf("index descriptor %q: dimension must be positive, got %d", d.Name, d.Dimension)
	}
	return nil
}

// Matches reports whether another descriptor declares the same index shape.
// State is excluded from the comparison; an empty similarity on either side
// is treated as cosine.
func (d IndexDescriptor) Matches(other IndexDescriptor) bool {
	return d.Name == other.Name &&
		d.Label == other.Label &&
		d.Property == other.Property &&
		d.Dimension == other.Dimension &&
		normalizeSimilarity(d.Similarity) == normalizeSimilarity(other.Similarity)
}

func normalizeSimilarity(s string) string {
	if s == "" {
		return SimilarityCosine
	}
	return strings.ToLower(s)
}

// Record is a graph node viewed as an embeddable record: a stable identifier,
// a label, and scalar properties. The text and vector properties are named by
// the index descriptor, not by the record itself.
type Record struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Props map[string]any `json:"props,omitempty"`
}

// StringProp returns the named property as a string, or "" when absent or of
// a different type.
func (r Record) StringProp(key string) string {
	if s, ok := r.Props[key].(string); ok {
		return s
	}
	return ""
}

// FloatProp returns the named property as a float64, accepting integer
// values stored by the driver.
func (r Record) FloatProp(key string) float64 {
	switch v := r.Props[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// ScoredRecord pairs a record with its cosine similarity score in [0,1],
// where 1 means identical direction.
type ScoredRecord struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}

// RecallResult is one ranked result of a recall operation. Joined holds
// attributes pulled from related records when the scenario aggregates across
// entities; it is nil for plain similarity search.
type RecallResult struct {
	Record Record         `json:"record"`
	Score  float64        `json:"score"`
	Rank   int            `json:"rank"`
	Joined map[string]any `json:"joined,omitempty"`
}

// Filters maps recognized filter keys to required values. Keys are validated
// against a closed schema before query construction; unknown keys are a
// configuration error, never silently ignored.
type Filters map[string]any

// Clone returns a shallow copy so callers can mutate their map after handing
// it to the engine.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
