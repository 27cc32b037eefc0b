package graphrecall

import (
	"github.com/soundprediction/graphrecall/pkg/driver"
	"github.com/soundprediction/graphrecall/pkg/embedder"
	"github.com/soundprediction/graphrecall/pkg/index"
	"github.com/soundprediction/graphrecall/pkg/recall"
)

// Sentinel errors from the subpackages, re-exported so callers can match
// with errors.Is without importing internals.
var (
	// ErrGraphStore wraps every failure originating in the graph database.
	ErrGraphStore = driver.ErrGraphStore

	// ErrIndexNotReady means the vector index backing an operation is
	// absent or still populating.
	ErrIndexNotReady = recall.ErrIndexNotReady

	// ErrInvalidParameter means a caller-supplied argument was rejected
	// before any store or provider call was made.
	ErrInvalidParameter = recall.ErrInvalidParameter

	// ErrNotFound means the requested record does not exist.
	ErrNotFound = recall.ErrNotFound

	// ErrIndexConflict means an index with the same name but a different
	// shape already exists.
	ErrIndexConflict = index.ErrIndexConflict

	// ErrProviderTransient marks embedding provider failures worth retrying.
	ErrProviderTransient = embedder.ErrProviderTransient

	// ErrProviderPermanent marks embedding provider failures that retrying
	// cannot fix.
	ErrProviderPermanent = embedder.ErrProviderPermanent
)
