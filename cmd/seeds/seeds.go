// Package seeds implements the `openengine seeds` command group for
// managing seed sites from the terminal.
package seeds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/seeds"
)

// Command returns the seeds command group.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seeds",
		Short: "Manage seed sites",
		Long: `Seeds lists and imports the seed sites the crawler starts from.

Examples:
  # List persisted seed sites
  openengine seeds list

  # Import seed sites from a YAML file
  openengine seeds import seeds.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(listCommand())
	cmd.AddCommand(importCommand())

	return cmd
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted seed sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(ctx context.Context, repo *database.SeedRepository) error {
				sites, err := repo.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list seed sites: %w", err)
				}

				if len(sites) == 0 {
					fmt.Fprintln(os.Stdout, "No seed sites configured.")
					return nil
				}

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.SetStyle(table.StyleRounded)
				t.AppendHeader(table.Row{"#", "URL", "Seed Suffixes"})
				for i, site := range sites {
					t.AppendRow(table.Row{i + 1, site.URL, strings.Join(site.Seeds, ", ")})
				}
				t.AppendFooter(table.Row{"Total", len(sites), ""})
				t.Render()

				return nil
			})
		},
	}
}

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import seed sites from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(ctx context.Context, repo *database.SeedRepository) error {
				added, err := seeds.Import(ctx, args[0], repo)
				if err != nil {
					return fmt.Errorf("failed to import seed sites: %w", err)
				}
				fmt.Fprintf(os.Stdout, "Imported %d seed site(s) from %s\n", added, args[0])
				return nil
			})
		},
	}
}

// withRepository opens the database for one subcommand invocation.
func withRepository(ctx context.Context, fn func(context.Context, *database.SeedRepository) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var db *sqlx.DB
	if db, err = database.NewPostgresConnection(cfg.Postgres); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return fn(ctx, database.NewSeedRepository(db))
}
