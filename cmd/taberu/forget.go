package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/models"
)

var forgetCmd = &cobra.Command{
	Use:   "forget <name> [brand]",
	Short: "Remove a food from the offline catalog",
	Long: `Remove a food from the offline catalog so it no longer shows up in
offline lookups and catalog searches. Logged history, favorites and added
foods are kept.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runForget,
}

func runForget(cmd *cobra.Command, args []string) error {
	brand := ""
	if len(args) == 2 {
		brand = args[1]
	}
	key := models.IdentityKey(args[0], brand)
	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		if brand == "" {
			food, err := findFood(ctx, c, key)
			if err != nil {
				return err
			}
			key = food.Key()
		}
		if err := c.Catalog.Remove(ctx, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from the catalog.\n", args[0])
		return nil
	})
}
