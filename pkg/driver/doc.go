// Package driver provides graph database access for graphrecall.
//
// This package defines the GraphDriver interface and implements it for Neo4j
// using the official neo4j-go-driver. The interface covers the three query
// primitives the recall core depends on (vector top-k search over a named
// index, predicate-filtered record reads, and one-hop relationship
// traversal), together with the vector index DDL and the embedding backfill
// reads and writes.
//
// # Usage
//
//	drv, err := driver.NewNeo4jDriver(ctx, uri, username, password, database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close(ctx)
//
// # Transaction Modes
//
// Read operations run through ExecuteRead and write operations through
// ExecuteWrite, so recall queries never participate in a write transaction.
//
// # Thread Safety
//
// Neo4jDriver is safe for concurrent use from multiple goroutines; the
// underlying driver pools connections internally.
//
// # Type Helpers
//
// Safe type conversion helpers in type_helpers.go convert database results to
// Go types without panicking on type assertion failures.
package driver
