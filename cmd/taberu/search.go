package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/models"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by name or brand",
	Long: `Search products by name or brand. The query is all remaining arguments
joined by spaces, so multi-word queries work with or without quotes.
Queries shorter than three characters return nothing.

Examples:
  taberu search greek yogurt
  taberu search --source catalog oat milk`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var searchSource string

func init() {
	searchCmd.Flags().StringVar(&searchSource, "source", "", "search source: remote (default) or catalog")
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	query := buildSearchQuery(args)
	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		provider := c.Provider()
		if searchSource == string(models.SourceCatalog) {
			provider = c.Catalog
		}
		foods := provider.Search(ctx, query)
		if provider != c.Catalog {
			remember(ctx, c, foods...)
		}
		if err := cli.WriteFoods(cmd.OutOrStdout(), foods, format); err != nil {
			return err
		}
		if len(foods) == 0 && format == cli.OutputText {
			if s, ok := c.Catalog.Suggest(query); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Did you mean %q?\n", s)
			}
		}
		return nil
	})
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
