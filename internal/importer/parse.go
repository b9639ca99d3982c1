// Package importer ingests bulk manual-entry files (JSON and XLSX) into the
// store and catalog, once on demand or continuously from watched directories.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/taberu/internal/manual"
)

// Row is one parsed manual entry and where it came from (1-based; the XLSX
// header is row 1, so data starts at row 2).
type Row struct {
	Number int
	Entry  manual.Entry
}

// columns maps accepted header spellings to manual entry fields.
var columns = map[string]func(e *manual.Entry, v string){
	"barcode":       func(e *manual.Entry, v string) { e.Barcode = v },
	"code":          func(e *manual.Entry, v string) { e.Barcode = v },
	"name":          func(e *manual.Entry, v string) { e.Name = v },
	"product":       func(e *manual.Entry, v string) { e.Name = v },
	"brand":         func(e *manual.Entry, v string) { e.Brand = v },
	"amount":        func(e *manual.Entry, v string) { e.Amount = v },
	"serving_size":  setServing,
	"unit":          func(e *manual.Entry, v string) { e.Unit = manual.Unit(v) },
	"calories":      func(e *manual.Entry, v string) { e.Calories = v },
	"kcal":          func(e *manual.Entry, v string) { e.Calories = v },
	"protein":       func(e *manual.Entry, v string) { e.Protein = v },
	"carbs":         func(e *manual.Entry, v string) { e.Carbs = v },
	"carbohydrates": func(e *manual.Entry, v string) { e.Carbs = v },
	"fat":           func(e *manual.Entry, v string) { e.Fat = v },
	"fiber":         func(e *manual.Entry, v string) { e.Fiber = v },
	"sugars":        func(e *manual.Entry, v string) { e.Sugars = v },
	"saturated_fat": func(e *manual.Entry, v string) { e.SaturatedFat = v },
	"sodium":        func(e *manual.Entry, v string) { e.Sodium = v },
	"potassium":     func(e *manual.Entry, v string) { e.Potassium = v },
	"cholesterol":   func(e *manual.Entry, v string) { e.Cholesterol = v },
}

// setServing accepts "100 g" style sizes; an explicit unit column wins.
func setServing(e *manual.Entry, v string) {
	amount, unit, ok := strings.Cut(v, " ")
	e.Amount = amount
	if ok && e.Unit == "" {
		e.Unit = manual.Unit(strings.TrimSpace(unit))
	}
}

// columnKey folds a header cell: "Saturated Fat" and "saturated-fat" both
// become "saturated_fat".
func columnKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func entryFrom(record map[string]string) manual.Entry {
	var e manual.Entry
	for k, v := range record {
		if set, ok := columns[columnKey(k)]; ok {
			set(&e, strings.TrimSpace(v))
		}
	}
	return e
}

// ParseJSON reads an array of objects keyed like the XLSX header. Numbers
// may be JSON numbers or strings.
func ParseJSON(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		flat := make(map[string]string, len(rec))
		for k, v := range rec {
			switch val := v.(type) {
			case nil:
			case string:
				flat[k] = val
			case json.Number:
				flat[k] = val.String()
			default:
				flat[k] = fmt.Sprint(val)
			}
		}
		rows = append(rows, Row{Number: i + 1, Entry: entryFrom(flat)})
	}
	return rows, nil
}

// FoodsSheet is read in preference to the first sheet when a workbook has it.
const FoodsSheet = "Foods"

// ParseXLSX reads the Foods sheet of a workbook, or its first sheet. The
// first non-empty row is the header; blank rows are skipped.
func ParseXLSX(r io.Reader) ([]Row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if name == FoodsSheet {
			sheet = name
			break
		}
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}

	var header []string
	rows := []Row{}
	for i, cellRow := range cells {
		if isBlank(cellRow) {
			continue
		}
		if header == nil {
			header = cellRow
			continue
		}
		record := make(map[string]string, len(header))
		for col, h := range header {
			if col < len(cellRow) {
				record[h] = cellRow[col]
			}
		}
		rows = append(rows, Row{Number: i + 1, Entry: entryFrom(record)})
	}
	return rows, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
