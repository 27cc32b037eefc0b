package graphrecall

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/graphrecall/pkg/config"
	"github.com/soundprediction/graphrecall/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage named vector indexes",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a named vector index",
	RunE:  runIndexCreate,
}

var indexDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a vector index by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexDrop,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vector indexes known to the store",
	RunE:  runIndexList,
}

var indexEnsureCmd = &cobra.Command{
	Use:   "ensure <manifest.yaml>",
	Short: "Apply a YAML index manifest idempotently",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexEnsure,
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed records whose vector property is missing",
	RunE:  runBackfill,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(backfillCmd)
	indexCmd.AddCommand(indexCreateCmd)
	indexCmd.AddCommand(indexDropCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexEnsureCmd)

	indexCreateCmd.Flags().String("name", "", "Index name (derived from label and property when empty)")
	indexCreateCmd.Flags().String("label", "", "Node label")
	indexCreateCmd.Flags().String("property", "", "Vector property")
	indexCreateCmd.Flags().Int("dimension", 1536, "Vector dimension")
	indexCreateCmd.Flags().String("similarity", "cosine", "Similarity function")
	indexCreateCmd.MarkFlagRequired("label")
	indexCreateCmd.MarkFlagRequired("property")

	backfillCmd.Flags().String("label", "", "Node label")
	backfillCmd.Flags().String("id-prop", "", "Identity property")
	backfillCmd.Flags().String("text-prop", "", "Text property to embed")
	backfillCmd.Flags().String("vector-prop", "", "Vector property to write")
	backfillCmd.Flags().Int("batch-size", 0, "Records per embedding batch")
	backfillCmd.MarkFlagRequired("label")
	backfillCmd.MarkFlagRequired("id-prop")
	backfillCmd.MarkFlagRequired("text-prop")
	backfillCmd.MarkFlagRequired("vector-prop")
}

// withClient loads config, connects a client, runs fn and closes the client.
func withClient(fn func(ctx context.Context, client clientHandle) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := newClient(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	defer client.Close(ctx)

	return fn(ctx, client)
}

func runIndexCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	label, _ := cmd.Flags().GetString("label")
	property, _ := cmd.Flags().GetString("property")
	dimension, _ := cmd.Flags().GetInt("dimension")
	similarity, _ := cmd.Flags().GetString("similarity")

	return withClient(func(ctx context.Context, client clientHandle) error {
		desc := types.IndexDescriptor{
			Name:       name,
			Label:      label,
			Property:   property,
			Dimension:  dimension,
			Similarity: similarity,
		}
		if err := client.CreateIndex(ctx, desc); err != nil {
			return err
		}
		fmt.Printf("Created vector index for %s.%s (dimension %d)\n", label, property, dimension)
		return nil
	})
}

func runIndexDrop(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client clientHandle) error {
		if err := client.DropIndex(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Dropped index %s\n", args[0])
		return nil
	})
}

func runIndexList(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client clientHandle) error {
		indexes, err := client.ListIndexes(ctx)
		if err != nil {
			return err
		}
		if len(indexes) == 0 {
			fmt.Println("No vector indexes found.")
			return nil
		}
		fmt.Printf("%-40s %-20s %-30s %-10s %s\n", "NAME", "LABEL", "PROPERTY", "DIMENSION", "STATE")
		for _, idx := range indexes {
			fmt.Printf("%-40s %-20s %-30s %-10d %s\n",
				idx.Name, idx.Label, idx.Property, idx.Dimension, idx.State)
		}
		return nil
	})
}

func runIndexEnsure(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client clientHandle) error {
		if err := client.EnsureIndexes(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Applied manifest %s\n", args[0])
		return nil
	})
}

func runBackfill(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetString("label")
	idProp, _ := cmd.Flags().GetString("id-prop")
	textProp, _ := cmd.Flags().GetString("text-prop")
	vectorProp, _ := cmd.Flags().GetString("vector-prop")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	return withClient(func(ctx context.Context, client clientHandle) error {
		embedded, err := client.Backfill(ctx, label, idProp, textProp, vectorProp, batchSize)
		if err != nil {
			return err
		}
		fmt.Printf("Embedded %d records of label %s\n", embedded, label)
		return nil
	})
}
