package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/merge"
	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List recent, favorite or added foods",
	Long: `List the foods of a tab, filtered by an optional query. With --remote and
a query of three or more characters, product search results follow the
local matches; a product already listed locally is not repeated.`,
	RunE: runList,
}

var (
	listTab    string
	listRemote bool
	listToday  bool
)

func init() {
	listCmd.Flags().StringVar(&listTab, "tab", "recent", "tab: recent, favorites or added")
	listCmd.Flags().BoolVar(&listRemote, "remote", false, "append product search results")
	listCmd.Flags().BoolVar(&listToday, "today", false, "list today's logged entries instead")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	tab, err := models.ParseTab(listTab)
	if err != nil {
		return err
	}
	query := buildSearchQuery(args)

	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		if listToday {
			entries, err := c.Store.ListToday(ctx, time.Now())
			if err != nil {
				return err
			}
			return cli.WriteEntries(cmd.OutOrStdout(), entries, format)
		}

		limit := c.Config.Search.HistoryLimit
		local, err := storage.LoadLocal(ctx, c.Store, limit)
		if err != nil {
			return err
		}
		var remote []*models.Food
		if listRemote && models.QueryActive(query) {
			remote = c.Provider().Search(ctx, query)
		}
		foods := merge.Build(&merge.Input{
			Tab:          tab,
			Query:        query,
			History:      local.History,
			Favorites:    local.Favorites,
			Added:        local.Added,
			Remote:       remote,
			HistoryLimit: limit,
		})
		return cli.WriteFoods(cmd.OutOrStdout(), foods, format)
	})
}
