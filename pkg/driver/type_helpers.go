package driver

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// TypeConversionError reports an unexpected value type coming back from the
// database, typically a query shape mismatch rather than bad data.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsRecordSlice safely converts an interface{} to []*db.Record.
// Returns the slice and true if successful, nil and false otherwise.
func AsRecordSlice(v any) ([]*db.Record, bool) {
	if v == nil {
		return nil, false
	}
	records, ok := v.([]*db.Record)
	return records, ok
}

// recordNode extracts a named dbtype.Node value from a query record.
func recordNode(record *db.Record, key string) (dbtype.Node, bool) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return dbtype.Node{}, false
	}
	node, ok := v.(dbtype.Node)
	return node, ok
}

// recordString extracts a named string value from a query record.
func recordString(record *db.Record, key string) (string, bool) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// recordFloat extracts a named float64 value from a query record.
// Integer values are widened, the driver returns counts as int64.
func recordFloat(record *db.Record, key string) (float64, bool) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return 0, false
	}
	switch f := v.(type) {
	case float64:
		return f, true
	case int64:
		return float64(f), true
	}
	return 0, false
}

// recordInt extracts a named int64 value from a query record.
func recordInt(record *db.Record, key string) (int64, bool) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

// recordMap extracts a named map value from a query record.
func recordMap(record *db.Record, key string) (map[string]any, bool) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// firstString returns the first element of a named list column as a string.
// SHOW INDEXES reports labelsOrTypes and properties as single-element lists.
func firstString(record *db.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	s, _ := list[0].(string)
	return s
}

// recordFromDBNode converts a returned node into a types.Record. The record
// ID is taken from idProp. Embedding payloads are stripped from Props so
// result sets stay small; callers never need the raw vectors back.
func recordFromDBNode(node dbtype.Node, idProp string) types.Record {
	rec := types.Record{
		Props: make(map[string]any, len(node.Props)),
	}
	if len(node.Labels) > 0 {
		rec.Label = node.Labels[0]
	}
	for k, v := range node.Props {
		if isVectorValue(v) {
			continue
		}
		rec.Props[k] = v
	}
	if id, ok := node.Props[idProp]; ok {
		switch s := id.(type) {
		case string:
			rec.ID = s
		default:
			rec.ID = fmt.Sprintf("%v", id)
		}
	}
	return rec
}

// isVectorValue reports whether a property value looks like an embedding
// payload rather than a scalar or short list.
func isVectorValue(v any) bool {
	switch vec := v.(type) {
	case []float32, []float64:
		return true
	case []any:
		if len(vec) == 0 {
			return false
		}
		switch vec[0].(type) {
		case float64, float32:
			return true
		}
	}
	return false
}
