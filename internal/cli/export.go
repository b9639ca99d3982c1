package cli

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/taberu/internal/importer"
	"github.com/hyperjump/taberu/internal/models"
)

// Sheet names used by ExportXLSX.
const (
	SheetHistory = "History"
	SheetFoods   = importer.FoodsSheet
)

var foodHeader = []interface{}{
	"barcode", "name", "brand", "basis", "serving_size", "calories", "protein", "carbs", "fat",
	"fiber", "sugars", "saturated_fat", "sodium", "potassium", "cholesterol",
}

// ExportXLSX writes a workbook with a History sheet (one row per entry) and a
// Foods sheet. The Foods header matches what the importer reads, so an
// exported Foods sheet can be imported again. Unknown nutrients are blank cells.
func ExportXLSX(w io.Writer, entries []*models.Entry, foods []*models.Food) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetHistory); err != nil {
		return err
	}
	historyHeader := append([]interface{}{"logged_at", "meal_type"}, foodHeader...)
	if err := setRow(f, SheetHistory, 1, historyHeader); err != nil {
		return err
	}
	for i, e := range entries {
		row := append([]interface{}{e.LoggedAt.Format("2006-01-02 15:04"), string(e.MealType)}, foodRow(e.Food)...)
		if err := setRow(f, SheetHistory, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetFoods); err != nil {
		return err
	}
	if err := setRow(f, SheetFoods, 1, foodHeader); err != nil {
		return err
	}
	for i, food := range foods {
		if err := setRow(f, SheetFoods, i+2, foodRow(food)); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func foodRow(food *models.Food) []interface{} {
	// the importer reads per-serving rows by amount and unit, so a per 100 g
	// record exports as 100 g
	serving := "100 g"
	if !food.IsPer100g() {
		serving = food.ServingDescription
	}
	return []interface{}{
		food.Barcode, food.Name, food.Brand, string(food.Basis), serving,
		food.Calories, food.Protein, food.Carbs, food.Fat,
		optional(food.Fiber), optional(food.Sugars), optional(food.SaturatedFat),
		optional(food.Sodium), optional(food.Potassium), optional(food.Cholesterol),
	}
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
