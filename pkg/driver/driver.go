package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// ErrGraphStore marks failures originating in the graph store. Callers can
// test for it with errors.Is; the wrapped error keeps the store's own message.
var ErrGraphStore = errors.New("graph store error")

// StoreError wraps a store failure with the operation and query target that
// produced it, so callers can diagnose without inspecting driver internals.
type StoreError struct {
	Op     string
	Target string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("graph store: %s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("graph store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports true for ErrGraphStore so errors.Is works across wrapping.
func (e *StoreError) Is(target error) bool { return target == ErrGraphStore }

func storeErr(op, target string, err error) error {
	return &StoreError{Op: op, Target: target, Err: err}
}

// VectorQuery describes one top-k similarity query against a named index.
// Filters, when present, are applied before the result set is truncated to
// K (the driver over-fetches from the index to keep the contract).
type VectorQuery struct {
	Index   string
	Vector  []float32
	K       int
	IDProp  string
	Filters types.Filters
}

// Traversal describes a one-hop walk from a set of source records across a
// relationship type to records of a target label.
type Traversal struct {
	SourceLabel  string
	SourceIDs    []string
	SourceIDProp string
	RelType      string
	Direction    Direction
	TargetLabel  string
	TargetIDProp string
}

// Direction is the edge direction of a traversal relative to the source.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
)

// Neighbor is one record reached by a traversal, tagged with the source
// record it was reached from.
type Neighbor struct {
	SourceID string
	Record   types.Record
}

// GraphReader provides the read primitives the recall engine depends on.
type GraphReader interface {
	// VectorTopK runs a top-k similarity query over a named vector index,
	// returning records ordered by score descending. When the query carries
	// filters they are applied before truncation to K.
	VectorTopK(ctx context.Context, q VectorQuery) ([]types.ScoredRecord, error)

	// FindRecords reads records of a label matching equality predicates.
	// A limit <= 0 means no limit.
	FindRecords(ctx context.Context, label, idProp string, filters types.Filters, limit int) ([]types.Record, error)

	// Traverse walks one hop from the given source records across a
	// relationship type and returns the connected records, tagged with the
	// source they were reached from.
	Traverse(ctx context.Context, t Traversal) ([]Neighbor, error)
}

// IndexStore provides vector index DDL and introspection.
type IndexStore interface {
	// CreateVectorIndex issues an idempotent index-creation statement.
	CreateVectorIndex(ctx context.Context, desc types.IndexDescriptor) error

	// DropIndex drops an index if it exists; absent indexes are not an error.
	DropIndex(ctx context.Context, name string) error

	// ListVectorIndexes returns the store's current vector index descriptors
	// with live state. The result is never served from a local cache.
	ListVectorIndexes(ctx context.Context) ([]types.IndexDescriptor, error)
}

// EmbeddingStore provides the scan/write I/O used by backfill.
type EmbeddingStore interface {
	// MissingEmbeddings returns up to limit records of the label that carry
	// non-empty text in textProp but no vector in vectorProp.
	MissingEmbeddings(ctx context.Context, label, idProp, textProp, vectorProp string, limit int) ([]types.Record, error)

	// CountMissingEmbeddings counts records still lacking the vector.
	CountMissingEmbeddings(ctx context.Context, label, textProp, vectorProp string) (int64, error)

	// WriteEmbeddings writes vectors back onto records by identifier. Only
	// the vector property is touched.
	WriteEmbeddings(ctx context.Context, label, idProp, vectorProp string, vectors map[string][]float32) error
}

// GraphDriver is the full surface the graphrecall core needs from a graph
// store. Consumers should depend on the smallest interface that meets their
// needs.
type GraphDriver interface {
	GraphReader
	IndexStore
	EmbeddingStore

	// VerifyConnectivity checks the store is reachable.
	VerifyConnectivity(ctx context.Context) error

	// Close releases all resources held by the driver.
	Close(ctx context.Context) error
}
