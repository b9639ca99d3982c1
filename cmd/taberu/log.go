package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/internal/storage"
)

var logCmd = &cobra.Command{
	Use:   "log [barcode]",
	Short: "Log a food to today's history",
	Long: `Log a food to the history. The food is found by barcode, or by --name
and --brand among history, favorites, added foods and the catalog. The
meal defaults to the one for the current time of day.

Examples:
  taberu log 3017620422003
  taberu log --name Granola --brand Home --meal breakfast`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

var (
	logName  string
	logBrand string
	logMeal  string
)

func init() {
	logCmd.Flags().StringVar(&logName, "name", "", "food name")
	logCmd.Flags().StringVar(&logBrand, "brand", "", "food brand")
	logCmd.Flags().StringVar(&logMeal, "meal", "", "meal: breakfast, lunch, dinner or snack")
}

func runLog(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	var meal models.MealType
	if logMeal != "" {
		m, ok := models.ParseMealType(logMeal)
		if !ok {
			return fmt.Errorf("unknown meal %q", logMeal)
		}
		meal = m
	}
	if len(args) == 0 && logName == "" {
		return fmt.Errorf("give a barcode or --name")
	}

	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		var food *models.Food
		if len(args) == 1 {
			food = c.Provider().LookupBarcode(ctx, args[0])
			if food == nil {
				return fmt.Errorf("no product found for barcode %s", args[0])
			}
		} else {
			found, err := findFood(ctx, c, models.IdentityKey(logName, logBrand))
			if err != nil {
				return err
			}
			food = found
		}

		entry, err := c.Store.AddEntry(ctx, food, meal, time.Now())
		if err != nil {
			return err
		}
		remember(ctx, c, food)
		return cli.WriteEntries(cmd.OutOrStdout(), []*models.Entry{entry}, format)
	})
}

// findFood resolves an identity key against local data first, then the
// catalog. An empty brand matches any brand.
func findFood(ctx context.Context, c *Components, key models.Key) (*models.Food, error) {
	match := func(f *models.Food) bool {
		k := f.Key()
		return k.Name == key.Name && (key.Brand == "" || k.Brand == key.Brand)
	}
	local, err := storage.LoadLocal(ctx, c.Store, c.Config.Search.HistoryLimit)
	if err != nil {
		return nil, err
	}
	for _, f := range local.Favorites {
		if match(f) {
			return f, nil
		}
	}
	for _, f := range local.Added {
		if match(f) {
			return f, nil
		}
	}
	for _, e := range local.History {
		if match(e.Food) {
			return e.Food, nil
		}
	}
	for _, f := range c.Catalog.Search(ctx, strings.TrimSpace(key.Name+" "+key.Brand)) {
		if match(f) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q by %q", storage.ErrNotFound, key.Name, key.Brand)
}
