package graphrecall

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/graphrecall/pkg/recall"
	"github.com/soundprediction/graphrecall/pkg/types"
)

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Run recall queries against the knowledge graph",
}

var similarCmd = &cobra.Command{
	Use:   "similar <text>",
	Short: "Find documents similar to the query text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSimilar,
}

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions <text>",
	Short: "Aggregate review comments from similar documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggestions,
}

var risksCmd = &cobra.Command{
	Use:   "risks <text>",
	Short: "Surface risk assessments linked to similar documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRisks,
}

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge <text>",
	Short: "Search one configured label directly",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKnowledge,
}

func init() {
	rootCmd.AddCommand(recallCmd)
	recallCmd.AddCommand(similarCmd)
	recallCmd.AddCommand(suggestionsCmd)
	recallCmd.AddCommand(risksCmd)
	recallCmd.AddCommand(knowledgeCmd)

	for _, cmd := range []*cobra.Command{similarCmd, suggestionsCmd, risksCmd, knowledgeCmd} {
		cmd.Flags().Int("top-k", 5, "Number of results to return")
	}
	similarCmd.Flags().StringToString("filter", nil, "Property filter, repeatable (e.g. --filter status=approved)")
	suggestionsCmd.Flags().String("department", "", "Restrict suggestions to one department")
	knowledgeCmd.Flags().String("label", "ReviewComment", "Label to search")
	knowledgeCmd.Flags().String("group-by", "department", "Property to group results by")
}

func queryText(args []string) string {
	return strings.Join(args, " ")
}

func flagFilters(cmd *cobra.Command) types.Filters {
	pairs, _ := cmd.Flags().GetStringToString("filter")
	if len(pairs) == 0 {
		return nil
	}
	filters := make(types.Filters, len(pairs))
	for k, v := range pairs {
		filters[k] = v
	}
	return filters
}

func runSimilar(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")
	filters := flagFilters(cmd)

	return withClient(func(ctx context.Context, client clientHandle) error {
		results, err := client.Similar(ctx, queryText(args), topK, filters)
		if err != nil {
			return err
		}
		f := recall.NewFormatter()
		fmt.Print(f.RenderSimilarDocuments(f.SimilarDocuments(results)))
		return nil
	})
}

func runSuggestions(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")
	department, _ := cmd.Flags().GetString("department")

	return withClient(func(ctx context.Context, client clientHandle) error {
		results, err := client.ReviewSuggestions(ctx, queryText(args), department, topK)
		if err != nil {
			return err
		}
		f := recall.NewFormatter()
		fmt.Print(f.RenderSuggestions(f.Suggestions(results)))
		return nil
	})
}

func runRisks(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")

	return withClient(func(ctx context.Context, client clientHandle) error {
		results, err := client.IdentifyRisks(ctx, queryText(args), topK)
		if err != nil {
			return err
		}
		f := recall.NewFormatter()
		fmt.Print(f.RenderRisks(f.Risks(results)))
		return nil
	})
}

func runKnowledge(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")
	label, _ := cmd.Flags().GetString("label")
	groupBy, _ := cmd.Flags().GetString("group-by")

	return withClient(func(ctx context.Context, client clientHandle) error {
		results, err := client.KnowledgeBase(ctx, queryText(args), label, topK, nil)
		if err != nil {
			return err
		}
		f := recall.NewFormatter()
		fmt.Print(f.RenderKnowledgeBase(f.KnowledgeBase(label, "content", groupBy, results)))
		return nil
	})
}
