// Package graphrecall provides vector recall over a graph-structured
// knowledge base for document review workflows.
//
// The Client composes an embedding provider, a vector index manager and the
// recall engine behind one facade:
//
//	client, err := graphrecall.NewClient(ctx, graphrecall.Config{
//	    DatabaseURI:      "bolt://localhost:7687",
//	    DatabaseUser:     "neo4j",
//	    DatabasePassword: "password",
//	    EmbeddingAPIKey:  os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	results, err := client.Similar(ctx, "AI customer service system", 5, nil)
//
// The individual packages remain usable on their own: pkg/embedder for
// embedding with caching and retry, pkg/index for index lifecycle and
// backfill, pkg/recall for the scenario engine and formatter, pkg/driver
// for the graph store access layer.
package graphrecall
