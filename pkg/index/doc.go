// Package index manages named vector indexes over the graph store.
//
// The Manager creates, drops and lists indexes, backfills missing embeddings
// in resumable batches, and applies declarative YAML manifests. Index state
// is always read live from the store; the manager keeps no local catalog, so
// it never reports an index that was dropped out-of-band as present.
package index
