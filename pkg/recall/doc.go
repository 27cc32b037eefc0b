// Package recall implements the retrieval scenarios over the graph store.
//
// The Engine embeds a query text, runs a top-k similarity search over the
// appropriate named vector index, optionally applies predicate filters and
// one-hop traversals, and returns ranked results. Scenarios cover plain
// similarity search, review suggestion aggregation, risk surfacing, grouped
// knowledge base retrieval and hybrid vector+predicate search.
//
// All scenarios share the same ordering contract: score descending, record
// ID ascending on ties. When a scenario aggregates across related records,
// the related records inherit the score of their best-matching primary and
// duplicates collapse to their maximum score.
//
// The Formatter maps engine output into per-scenario views without touching
// the store; it is safe to call on any result set including empty ones.
package recall
