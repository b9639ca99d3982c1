package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/models"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite <name> [brand]",
	Short: "Mark a known food as a favorite, or unmark it",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFavorite,
}

var favoriteRemove bool

func init() {
	favoriteCmd.Flags().BoolVar(&favoriteRemove, "remove", false, "remove the favorite instead")
}

func runFavorite(cmd *cobra.Command, args []string) error {
	name, brand := args[0], ""
	if len(args) == 2 {
		brand = args[1]
	}
	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		food, err := findFood(ctx, c, models.IdentityKey(name, brand))
		if err != nil {
			return err
		}
		if favoriteRemove {
			if err := c.Store.RemoveFavorite(ctx, food.Key()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites.\n", food.DisplayName())
			return nil
		}
		if err := c.Store.AddFavorite(ctx, food); err != nil {
			return err
		}
		remember(ctx, c, food)
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites.\n", food.DisplayName())
		return nil
	})
}
