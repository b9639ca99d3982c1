package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/manual"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a food by hand",
	Long: `Add a food by hand. Nutrients are given for --amount of --unit; gram
amounts are scaled to per 100 g, other units are stored per serving.

Example:
  taberu add --name "Granola" --brand "Home" --amount 45 --unit g \
    --calories 200 --protein 5 --carbs 30 --fat 7`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var (
	addEntry manual.Entry
	addUnit  string
)

func init() {
	f := addCmd.Flags()
	f.StringVar(&addEntry.Barcode, "barcode", "", "product barcode")
	f.StringVar(&addEntry.Name, "name", "", "product name (required)")
	f.StringVar(&addEntry.Brand, "brand", "", "brand (required)")
	f.StringVar(&addEntry.Amount, "amount", "100", "amount the nutrients are given for")
	f.StringVar(&addUnit, "unit", "g", "unit of the amount: g, serving, tbsp, cup or piece")
	f.StringVar(&addEntry.Calories, "calories", "", "energy in kcal (required)")
	f.StringVar(&addEntry.Protein, "protein", "", "protein in g")
	f.StringVar(&addEntry.Carbs, "carbs", "", "carbohydrates in g")
	f.StringVar(&addEntry.Fat, "fat", "", "fat in g")
	f.StringVar(&addEntry.Fiber, "fiber", "", "fiber in g")
	f.StringVar(&addEntry.Sugars, "sugars", "", "sugars in g")
	f.StringVar(&addEntry.SaturatedFat, "saturated-fat", "", "saturated fat in g")
	f.StringVar(&addEntry.Sodium, "sodium", "", "sodium in mg")
	f.StringVar(&addEntry.Potassium, "potassium", "", "potassium in mg")
	f.StringVar(&addEntry.Cholesterol, "cholesterol", "", "cholesterol in mg")
}

func runAdd(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	unit, err := manual.ParseUnit(addUnit)
	if err != nil {
		return err
	}
	entry := addEntry
	entry.Unit = unit
	food, err := manual.Normalize(&entry)
	if err != nil {
		return err
	}
	return withComponents(func(c *Components) error {
		if err := saveManual(cmd.Context(), c, food); err != nil {
			return err
		}
		return cli.WriteFood(cmd.OutOrStdout(), food, format)
	})
}
