// Package cli provides output formatting for the taberu commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one line per record.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text", "compact" or "json"; empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputCompact:
		return OutputCompact, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
}

const nameWidth = 40

// WriteFoods writes a list of foods. An empty list prints a single notice in
// text formats and [] in JSON.
func WriteFoods(w io.Writer, foods []*models.Food, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if foods == nil {
			foods = []*models.Food{}
		}
		return writeJSON(w, foods)
	case OutputCompact:
		for _, f := range foods {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Brand, utils.FormatNumber(f.Calories), f.Basis)
		}
		return nil
	}
	if len(foods) == 0 {
		fmt.Fprintln(w, "No foods found.")
		return nil
	}
	for i, f := range foods {
		fmt.Fprintf(w, "%3d. %-*s %s kcal %s\n", i+1, nameWidth, utils.Truncate(f.DisplayName(), nameWidth), utils.FormatNumber(f.Calories), basisLabel(f))
	}
	return nil
}

// WriteFood writes one food with every known nutrient.
func WriteFood(w io.Writer, f *models.Food, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, f)
	case OutputCompact:
		return WriteFoods(w, []*models.Food{f}, format)
	}
	fmt.Fprintf(w, "%s\n", f.DisplayName())
	if f.Barcode != "" {
		fmt.Fprintf(w, "  Barcode:       %s\n", f.Barcode)
	}
	fmt.Fprintf(w, "  Values:        %s\n", basisLabel(f))
	fmt.Fprintf(w, "  Calories:      %s kcal\n", utils.FormatNumber(f.Calories))
	fmt.Fprintf(w, "  Protein:       %s g\n", utils.FormatNumber(f.Protein))
	fmt.Fprintf(w, "  Carbs:         %s g\n", utils.FormatNumber(f.Carbs))
	fmt.Fprintf(w, "  Fat:           %s g\n", utils.FormatNumber(f.Fat))
	micros := []struct {
		label string
		v     *float64
		unit  string
	}{
		{"Fiber", f.Fiber, "g"},
		{"Sugars", f.Sugars, "g"},
		{"Saturated fat", f.SaturatedFat, "g"},
		{"Sodium", f.Sodium, "mg"},
		{"Potassium", f.Potassium, "mg"},
		{"Cholesterol", f.Cholesterol, "mg"},
	}
	for _, m := range micros {
		if m.v != nil {
			fmt.Fprintf(w, "  %-14s %s %s\n", m.label+":", utils.FormatNumber(*m.v), m.unit)
		}
	}
	if len(f.Categories) > 0 {
		fmt.Fprintf(w, "  Categories:    %s\n", utils.Truncate(strings.Join(f.Categories, ", "), 80))
	}
	return nil
}

// WriteEntries writes logged history entries.
func WriteEntries(w io.Writer, entries []*models.Entry, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if entries == nil {
			entries = []*models.Entry{}
		}
		return writeJSON(w, entries)
	case OutputCompact:
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.LoggedAt.Format("2006-01-02T15:04"), e.MealType, e.Food.Name, e.Food.Brand, utils.FormatNumber(e.Food.Calories))
		}
		return nil
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "Nothing logged.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-9s %-*s %s kcal %s\n", e.LoggedAt.Format("15:04"), e.MealType, nameWidth, utils.Truncate(e.Food.DisplayName(), nameWidth), utils.FormatNumber(e.Food.Calories), basisLabel(e.Food))
	}
	return nil
}

func basisLabel(f *models.Food) string {
	if f.IsPer100g() {
		return "per 100 g"
	}
	if f.ServingDescription != "" {
		return "per " + f.ServingDescription
	}
	return "per serving"
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
