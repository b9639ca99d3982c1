package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export history and stored foods to a workbook",
	Long: `Export the logged history and the added and favorite foods to an .xlsx
workbook. The Foods sheet can be imported again with "taberu import".`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		entries, err := c.Store.ListRecent(ctx, 0)
		if err != nil {
			return err
		}
		added, err := c.Store.ListAdded(ctx)
		if err != nil {
			return err
		}
		favorites, err := c.Store.ListFavorites(ctx)
		if err != nil {
			return err
		}

		foods := make([]*models.Food, 0, len(added)+len(favorites))
		seen := make(map[models.Key]struct{})
		for _, f := range append(added, favorites...) {
			if _, dup := seen[f.Key()]; dup {
				continue
			}
			seen[f.Key()] = struct{}{}
			foods = append(foods, f)
		}

		out, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := cli.ExportXLSX(out, entries, foods); err != nil {
			_ = out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries and %d foods to %s\n", len(entries), len(foods), args[0])
		return nil
	})
}
