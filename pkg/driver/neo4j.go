package driver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// overfetchFactor is how many extra candidates a filtered vector query pulls
// from the index before applying predicates, so that truncation to K happens
// after filtering rather than before.
const overfetchFactor = 4

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent guards labels and property names that are interpolated into
// Cypher text. Values always travel as parameters; identifiers cannot.
func validIdent(s string) error {
	if !identPattern.MatchString(s) {
		return fmt.Errorf("invalid identifier %q", s)
	}
	return nil
}

// Neo4jDriver implements the GraphDriver interface for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance and verifies the
// connection is live.
func NewNeo4jDriver(ctx context.Context, uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	d := &Neo4jDriver{client: client, database: database}
	if err := d.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyConnectivity checks the store is reachable.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	if err := n.client.VerifyConnectivity(ctx); err != nil {
		return storeErr("verify connectivity", "", err)
	}
	return nil
}

// Close releases all resources held by the driver.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// VectorTopK runs a top-k similarity query over a named vector index.
//
// When the query carries filters the driver asks the index for K *
// overfetchFactor candidates, applies the predicates, and only then truncates
// to K, so the returned set holds K filter-satisfying matches whenever that
// many exist in the candidate pool.
func (n *Neo4jDriver) VectorTopK(ctx context.Context, q VectorQuery) ([]types.ScoredRecord, error) {
	if err := validIdent(q.IDProp); err != nil {
		return nil, storeErr("vector query", q.Index, err)
	}

	candidateK := q.K
	if len(q.Filters) > 0 {
		candidateK = q.K * overfetchFactor
	}

	params := map[string]any{
		"index_name": q.Index,
		"candidates": candidateK,
		"embedding":  q.Vector,
		"k":          q.K,
	}

	var where []string
	i := 0
	for key, value := range q.Filters {
		if err := validIdent(key); err != nil {
			return nil, storeErr("vector query", q.Index, err)
		}
		param := fmt.Sprintf("f%d", i)
		where = append(where, fmt.Sprintf("node.`%s` = $%s", key, param))
		params[param] = value
		i++
	}

	query := `
		CALL db.index.vector.queryNodes($index_name, $candidates, $embedding)
		YIELD node, score
	`
	if len(where) > 0 {
		query += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	query += `
		RETURN node, score
		ORDER BY score DESC
		LIMIT $k
	`

	records, err := n.readRecords(ctx, query, params)
	if err != nil {
		return nil, storeErr("vector query", q.Index, err)
	}

	results := make([]types.ScoredRecord, 0, len(records))
	for _, record := range records {
		node, ok := recordNode(record, "node")
		if !ok {
			continue
		}
		score, _ := recordFloat(record, "score")
		results = append(results, types.ScoredRecord{
			Record: recordFromDBNode(node, q.IDProp),
			Score:  score,
		})
	}
	return results, nil
}

// FindRecords reads records of a label matching equality predicates.
func (n *Neo4jDriver) FindRecords(ctx context.Context, label, idProp string, filters types.Filters, limit int) ([]types.Record, error) {
	if err := validIdent(label); err != nil {
		return nil, storeErr("find records", label, err)
	}
	if err := validIdent(idProp); err != nil {
		return nil, storeErr("find records", label, err)
	}

	params := map[string]any{}
	var where []string
	i := 0
	for key, value := range filters {
		if err := validIdent(key); err != nil {
			return nil, storeErr("find records", label, err)
		}
		param := fmt.Sprintf("f%d", i)
		where = append(where, fmt.Sprintf("n.`%s` = $%s", key, param))
		params[param] = value
		i++
	}

	query := fmt.Sprintf("MATCH (n:`%s`)\n", label)
	if len(where) > 0 {
		query += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	query += "RETURN n\n"
	if limit > 0 {
		query += "LIMIT $limit"
		params["limit"] = limit
	}

	records, err := n.readRecords(ctx, query, params)
	if err != nil {
		return nil, storeErr("find records", label, err)
	}

	results := make([]types.Record, 0, len(records))
	for _, record := range records {
		node, ok := recordNode(record, "n")
		if !ok {
			continue
		}
		rec := recordFromDBNode(node, idProp)
		rec.Label = label
		results = append(results, rec)
	}
	return results, nil
}

// Traverse walks one hop from the given source records across a relationship
// type, returning the connected target records tagged with their source.
func (n *Neo4jDriver) Traverse(ctx context.Context, t Traversal) ([]Neighbor, error) {
	for _, ident := range []string{t.SourceLabel, t.SourceIDProp, t.RelType, t.TargetLabel, t.TargetIDProp} {
		if err := validIdent(ident); err != nil {
			return nil, storeErr("traverse", t.RelType, err)
		}
	}

	pattern := fmt.Sprintf("(s)-[:`%s`]->(t:`%s`)", t.RelType, t.TargetLabel)
	if t.Direction == Incoming {
		pattern = fmt.Sprintf("(s)<-[:`%s`]-(t:`%s`)", t.RelType, t.TargetLabel)
	}

	query := fmt.Sprintf(`
		MATCH (s:`+"`%s`"+`)
		WHERE s.`+"`%s`"+` IN $source_ids
		MATCH %s
		RETURN s.`+"`%s`"+` AS source_id, t
	`, t.SourceLabel, t.SourceIDProp, pattern, t.SourceIDProp)

	records, err := n.readRecords(ctx, query, map[string]any{"source_ids": t.SourceIDs})
	if err != nil {
		return nil, storeErr("traverse", t.RelType, err)
	}

	neighbors := make([]Neighbor, 0, len(records))
	for _, record := range records {
		node, ok := recordNode(record, "t")
		if !ok {
			continue
		}
		sourceID, _ := recordString(record, "source_id")
		rec := recordFromDBNode(node, t.TargetIDProp)
		rec.Label = t.TargetLabel
		neighbors = append(neighbors, Neighbor{SourceID: sourceID, Record: rec})
	}
	return neighbors, nil
}

// CreateVectorIndex issues an idempotent CREATE VECTOR INDEX statement.
// Index DDL does not accept parameters, so identifiers are validated and
// interpolated.
func (n *Neo4jDriver) CreateVectorIndex(ctx context.Context, desc types.IndexDescriptor) error {
	for _, ident := range []string{desc.Name, desc.Label, desc.Property} {
		if err := validIdent(ident); err != nil {
			return storeErr("create index", desc.Name, err)
		}
	}
	similarity := desc.Similarity
	if similarity == "" {
		similarity = types.SimilarityCosine
	}
	if err := validIdent(similarity); err != nil {
		return storeErr("create index", desc.Name, err)
	}

	query := fmt.Sprintf(`
		CREATE VECTOR INDEX `+"`%s`"+` IF NOT EXISTS
		FOR (n:`+"`%s`"+`) ON (n.`+"`%s`"+`)
		OPTIONS {
		  indexConfig: {
		    `+"`vector.dimensions`"+`: %d,
		    `+"`vector.similarity_function`"+`: '%s'
		  }
		}
	`, desc.Name, desc.Label, desc.Property, desc.Dimension, similarity)

	if err := n.write(ctx, query, nil); err != nil {
		return storeErr("create index", desc.Name, err)
	}
	return nil
}

// DropIndex drops an index if it exists. Absent indexes are not an error.
func (n *Neo4jDriver) DropIndex(ctx context.Context, name string) error {
	if err := validIdent(name); err != nil {
		return storeErr("drop index", name, err)
	}
	query := fmt.Sprintf("DROP INDEX `%s` IF EXISTS", name)
	if err := n.write(ctx, query, nil); err != nil {
		return storeErr("drop index", name, err)
	}
	return nil
}

// ListVectorIndexes returns the store's current vector index descriptors with
// live state, straight from SHOW INDEXES.
func (n *Neo4jDriver) ListVectorIndexes(ctx context.Context) ([]types.IndexDescriptor, error) {
	query := `
		SHOW INDEXES
		YIELD name, type, labelsOrTypes, properties, options, state
		WHERE type = 'VECTOR'
		RETURN name, labelsOrTypes, properties, options, state
	`

	records, err := n.readRecords(ctx, query, nil)
	if err != nil {
		return nil, storeErr("list indexes", "", err)
	}

	descriptors := make([]types.IndexDescriptor, 0, len(records))
	for _, record := range records {
		desc := types.IndexDescriptor{Similarity: types.SimilarityCosine}
		desc.Name, _ = recordString(record, "name")
		desc.Label = firstString(record, "labelsOrTypes")
		desc.Property = firstString(record, "properties")

		if state, ok := recordString(record, "state"); ok {
			desc.State = indexStateFromNeo4j(state)
		}
		if options, ok := recordMap(record, "options"); ok {
			if cfg, ok := options["indexConfig"].(map[string]any); ok {
				if dim, ok := cfg["vector.dimensions"].(int64); ok {
					desc.Dimension = int(dim)
				}
				if sim, ok := cfg["vector.similarity_function"].(string); ok {
					desc.Similarity = strings.ToLower(sim)
				}
			}
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

// MissingEmbeddings returns up to limit records that carry non-empty text in
// textProp but no vector in vectorProp.
func (n *Neo4jDriver) MissingEmbeddings(ctx context.Context, label, idProp, textProp, vectorProp string, limit int) ([]types.Record, error) {
	for _, ident := range []string{label, idProp, textProp, vectorProp} {
		if err := validIdent(ident); err != nil {
			return nil, storeErr("scan missing embeddings", label, err)
		}
	}

	query := fmt.Sprintf(`
		MATCH (n:`+"`%s`"+`)
		WHERE n.`+"`%s`"+` IS NOT NULL
		  AND n.`+"`%s`"+` <> ''
		  AND n.`+"`%s`"+` IS NULL
		RETURN n.`+"`%s`"+` AS id, n.`+"`%s`"+` AS text
		ORDER BY id
		LIMIT $limit
	`, label, textProp, textProp, vectorProp, idProp, textProp)

	records, err := n.readRecords(ctx, query, map[string]any{"limit": limit})
	if err != nil {
		return nil, storeErr("scan missing embeddings", label, err)
	}

	results := make([]types.Record, 0, len(records))
	for _, record := range records {
		id, _ := recordString(record, "id")
		text, _ := recordString(record, "text")
		results = append(results, types.Record{
			ID:    id,
			Label: label,
			Props: map[string]any{textProp: text},
		})
	}
	return results, nil
}

// CountMissingEmbeddings counts records of the label still lacking a vector.
func (n *Neo4jDriver) CountMissingEmbeddings(ctx context.Context, label, textProp, vectorProp string) (int64, error) {
	for _, ident := range []string{label, textProp, vectorProp} {
		if err := validIdent(ident); err != nil {
			return 0, storeErr("count missing embeddings", label, err)
		}
	}

	query := fmt.Sprintf(`
		MATCH (n:`+"`%s`"+`)
		WHERE n.`+"`%s`"+` IS NOT NULL
		  AND n.`+"`%s`"+` <> ''
		  AND n.`+"`%s`"+` IS NULL
		RETURN count(n) AS missing
	`, label, textProp, textProp, vectorProp)

	records, err := n.readRecords(ctx, query, nil)
	if err != nil {
		return 0, storeErr("count missing embeddings", label, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	count, _ := recordInt(records[0], "missing")
	return count, nil
}

// WriteEmbeddings writes vectors back onto records by identifier using
// db.create.setNodeVectorProperty, which stores them in the store's native
// float32 representation.
func (n *Neo4jDriver) WriteEmbeddings(ctx context.Context, label, idProp, vectorProp string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	for _, ident := range []string{label, idProp, vectorProp} {
		if err := validIdent(ident); err != nil {
			return storeErr("write embeddings", label, err)
		}
	}

	rows := make([]map[string]any, 0, len(vectors))
	for id, vector := range vectors {
		rows = append(rows, map[string]any{"id": id, "vector": vector})
	}

	query := fmt.Sprintf(`
		UNWIND $rows AS row
		MATCH (n:`+"`%s`"+` {`+"`%s`"+`: row.id})
		CALL db.create.setNodeVectorProperty(n, $vector_prop, row.vector)
	`, label, idProp)

	err := n.write(ctx, query, map[string]any{
		"rows":        rows,
		"vector_prop": vectorProp,
	})
	if err != nil {
		return storeErr("write embeddings", label, err)
	}
	return nil
}

func (n *Neo4jDriver) readRecords(ctx context.Context, query string, params map[string]any) ([]*db.Record, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, ok := AsRecordSlice(result)
	if !ok {
		return nil, NewTypeConversionError("[]*db.Record", fmt.Sprintf("%T", result), "")
	}
	return records, nil
}

func (n *Neo4jDriver) write(ctx context.Context, query string, params map[string]any) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

func indexStateFromNeo4j(state string) types.IndexState {
	switch strings.ToUpper(state) {
	case "ONLINE":
		return types.IndexStateReady
	case "POPULATING":
		return types.IndexStateCreating
	case "FAILED":
		return types.IndexStateFailed
	default:
		return types.IndexState(strings.ToLower(state))
	}
}
