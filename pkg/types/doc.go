// Package types defines the core data types for the graphrecall subsystem.
//
// This package contains the fundamental types used throughout graphrecall:
//   - Record: A graph node viewed as an embeddable record
//   - ScoredRecord: A record paired with a similarity score
//   - IndexDescriptor: Configuration and lifecycle state of a named vector index
//   - RecallResult: A ranked, scored result with joined attributes
//   - Filters: Structured predicate filters for hybrid search
//
// # Index Lifecycle
//
// Vector indexes move through a small set of states reported by the store:
//   - IndexStateCreating: The index exists but is still populating
//   - IndexStateReady: The index is online and queryable
//   - IndexStateFailed: The index failed to build
//
// An index that does not appear in the store at all is simply absent; a
// descriptor is never synthesized for it.
//
// # Validation
//
// Types provide Validate() methods for input validation:
//
//	desc := types.IndexDescriptor{Name: "document_description_vector", ...}
//	if err := desc.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// All types are designed to be JSON-serializable with appropriate struct tags.
package types
