package recall

import (
	"github.com/soundprediction/graphrecall/pkg/types"
)

// FilterKind is the accepted value type for a filter key.
type FilterKind string

const (
	FilterString FilterKind = "string"
	FilterNumber FilterKind = "number"
	FilterBool   FilterKind = "bool"
)

// FilterSchema is the closed set of filter keys a label accepts, with their
// value types. Keys outside the schema are rejected rather than passed to
// the store.
type FilterSchema map[string]FilterKind

// Validate checks every filter key and value type against the schema.
func (s FilterSchema) Validate(op string, filters types.Filters) error {
	for key, value := range filters {
		kind, ok := s[key]
		if !ok {
			return opErr(op, ErrInvalidParameter, nil, "filter", key)
		}
		if !kindMatches(kind, value) {
			return opErr(op, ErrInvalidParameter, nil, "filter", key, "value", value)
		}
	}
	return nil
}

func kindMatches(kind FilterKind, value any) bool {
	switch kind {
	case FilterString:
		_, ok := value.(string)
		return ok
	case FilterNumber:
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case FilterBool:
		_, ok := value.(bool)
		return ok
	}
	return false
}
