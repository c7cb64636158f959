package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repodigest/repo-digest/internal/config"
	"github.com/repodigest/repo-digest/internal/embedding"
	"github.com/repodigest/repo-digest/internal/models"
	"github.com/repodigest/repo-digest/internal/pipeline"
	"github.com/repodigest/repo-digest/internal/surrealdb"
)

var errSurrealNotConfigured = errors.New("SURREAL_URL is not set")

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:           "repo-digest",
		Short:         "GitHub repository → AI-generated structured summary",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		summarizeCmd(&verbose),
		schemaCmd(),
		historyCmd(),
		statsCmd(),
		searchCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return
	}
	fmt.Println(string(out))
}

func buildLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func summarizeCmd(verbose *bool) *cobra.Command {
	var token string
	var budget int
	var showContext bool

	cmd := &cobra.Command{
		Use:   "summarize [url]",
		Short: "Summarize a public GitHub repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := buildLogger(*verbose)
			defer func() { _ = logger.Sync() }()

			opts := pipeline.Options{Token: token, Budget: budget}
			if showContext {
				opts.ContextOut = os.Stderr
			}

			result, err := pipeline.Run(context.Background(), cfg, args[0], opts, logger)
			if err != nil {
				printJSON(models.NewErrorResponse(err.Error()))
				return err
			}
			printJSON(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "GitHub access token (overrides GITHUB_TOKEN)")
	cmd.Flags().IntVar(&budget, "budget", 0, "Context character budget (overrides CONTEXT_BUDGET)")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "Print the assembled context to stderr")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Initialize/update the SurrealDB summary schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := config.Load()
			if !cfg.HistoryEnabled() {
				return errSurrealNotConfigured
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			if err := db.InitSchema(ctx); err != nil {
				return err
			}
			fmt.Println("Schema initialized")
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := config.Load()
			if !cfg.HistoryEnabled() {
				return errSurrealNotConfigured
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			records, err := db.RecentSummaries(ctx, n)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No summaries recorded")
				return nil
			}

			for _, r := range records {
				fmt.Printf("%s  %s  (%s)\n", r.CreatedAt.Format("2006-01-02 15:04"), r.FullName, r.Model)
				fmt.Printf("   %s\n", r.Summary)
				if len(r.Technologies) > 0 {
					fmt.Printf("   Tech: %s\n", strings.Join(r.Technologies, ", "))
				}
				fmt.Printf("   Context: %d chars, %d tokens\n\n", r.ContextChars, r.ContextTokens)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "limit", "n", 10, "Number of records")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show summary counts and technology breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := config.Load()
			if !cfg.HistoryEnabled() {
				return errSurrealNotConfigured
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			stats, err := db.GetStats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Summaries: %d\n", stats.Total)
			fmt.Printf("Repos:     %d\n", stats.Repos)
			fmt.Printf("Embedded:  %d\n", stats.Embedded)

			techs, err := db.GetTechnologyBreakdown(ctx)
			if err != nil {
				return err
			}

			if len(techs) > 0 {
				sort.Slice(techs, func(i, j int) bool {
					return techs[i].Count > techs[j].Count
				})
				fmt.Println("\nTechnology breakdown:")
				for _, t := range techs {
					fmt.Printf("  %-20s %d\n", t.Technology, t.Count)
				}
			}

			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic similarity search across stored summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := config.Load()
			if !cfg.HistoryEnabled() {
				return errSurrealNotConfigured
			}
			query := args[0]

			// Embed the query
			embClient := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
			vec, err := embClient.EmbedSingle(ctx, query)
			if err != nil {
				return fmt.Errorf("embedding query: %w", err)
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			results, err := db.VectorSearch(ctx, vec, k)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No results found")
				return nil
			}

			fmt.Printf("Top %d results for %q:\n\n", len(results), query)
			for i, r := range results {
				fmt.Printf("%d. %s  (%.3f)\n", i+1, r.FullName, r.Score)
				fmt.Printf("   %s\n", r.Summary)
				if len(r.Technologies) > 0 {
					fmt.Printf("   Tech: %s\n", strings.Join(r.Technologies, ", "))
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 10, "Number of results")
	return cmd
}
