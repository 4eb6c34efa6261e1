// Package search implements the `openengine search` command for querying
// the index from the terminal.
package search

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/domain"
	"github.com/openengine/openengine/internal/embedder"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/search"
	"github.com/openengine/openengine/internal/vector"
)

// urlColumnWidth caps the URL column so long URLs wrap instead of blowing
// the table apart.
const urlColumnWidth = 96

// Command returns the search command.
func Command() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the index",
		Long: `Search ranks crawled pages by semantic similarity to the query and
prints the results as a table.

Examples:
  # Search for pages about container networking
  openengine search -q "container networking"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), query)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "query text to search for")
	if err := cmd.MarkFlagRequired("query"); err != nil {
		fmt.Fprintf(os.Stderr, "Error marking query flag as required: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func run(ctx context.Context, query string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Logger.Level,
		Development: cfg.Logger.Development,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	vectors, err := vector.NewClient(cfg.Qdrant, cfg.Embedder.Dimension)
	if err != nil {
		return fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	defer vectors.Close()

	svc := search.NewService(embedder.NewClient(cfg.Embedder), vectors)

	results, err := svc.Search(ctx, query)
	if err != nil {
		log.Error("Search failed", "query", query, "error", err)
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintf(os.Stdout, "No results found for query: %s\n", query)
		return nil
	}

	renderResults(results, query)
	return nil
}

// renderResults prints the ranked results as a table.
func renderResults(results []domain.SearchResult, query string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: urlColumnWidth},
	})

	t.AppendHeader(table.Row{"#", "URL", "Score"})
	for i, result := range results {
		t.AppendRow(table.Row{i + 1, result.URL, fmt.Sprintf("%.4f", result.Score)})
	}
	t.AppendFooter(table.Row{"Total", len(results), fmt.Sprintf("Query: %s", query)})

	t.Render()
}
