package manual

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/pkg/utils"
)

const baseGrams = 100.0

// Validate checks the required fields. It does not parse numbers.
func Validate(e *Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "Please enter a product name")
	}
	if strings.TrimSpace(e.Brand) == "" {
		return invalid("brand", "Please enter a brand")
	}
	if strings.TrimSpace(e.Amount) == "" {
		return invalid("amount", "Please enter a serving size")
	}
	if blank(e.Calories) && blank(e.Protein) && blank(e.Carbs) && blank(e.Fat) {
		return invalid("calories", "Please enter at least one of calories, protein, carbs or fat")
	}
	return nil
}

// Normalize validates e and converts it to a canonical record.
//
// Only gram entries are rebased: for an amount other than 100 every nutrient
// is multiplied by 100/amount. Any other unit keeps the literal per-serving
// values and is tagged BasisPerServing so consumers can tell the two apart.
func Normalize(e *Entry) (*models.Food, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	unit, err := ParseUnit(string(e.Unit))
	if err != nil {
		return nil, invalid("unit", "Please choose a serving unit")
	}
	amount, err := parseNumber(e.Amount)
	if err != nil || amount <= 0 {
		return nil, invalid("amount", "Serving size must be a positive number")
	}

	scale := 1.0
	if unit == UnitGram && amount != baseGrams {
		scale = baseGrams / amount
	}

	p := parser{scale: scale}
	food := &models.Food{
		Barcode:      strings.TrimSpace(e.Barcode),
		Name:         strings.TrimSpace(e.Name),
		Brand:        strings.TrimSpace(e.Brand),
		Calories:     p.required("calories", e.Calories, 0),
		Protein:      p.required("protein", e.Protein, 2),
		Carbs:        p.required("carbs", e.Carbs, 2),
		Fat:          p.required("fat", e.Fat, 2),
		Fiber:        p.optional("fiber", e.Fiber, 2),
		Sugars:       p.optional("sugars", e.Sugars, 2),
		SaturatedFat: p.optional("saturated fat", e.SaturatedFat, 2),
		Sodium:       p.optional("sodium", e.Sodium, 0),
		Potassium:    p.optional("potassium", e.Potassium, 0),
		Cholesterol:  p.optional("cholesterol", e.Cholesterol, 0),
		ServingSize:  formatAmount(amount) + " " + unit.Abbrev(),
		Source:       models.SourceManual,
	}
	if p.err != nil {
		return nil, p.err
	}
	if unit == UnitGram {
		food.Basis = models.BasisPer100g
	} else {
		food.Basis = models.BasisPerServing
		food.ServingDescription = food.ServingSize
	}
	return food, nil
}

// parser accumulates the first parse failure so Normalize reads as a list of fields.
type parser struct {
	scale float64
	err   error
}

func (p *parser) value(field, raw string) (float64, bool) {
	if blank(raw) {
		return 0, false
	}
	v, err := parseNumber(raw)
	if err != nil || v < 0 {
		if p.err == nil {
			p.err = invalid(field, "%s must be a non-negative number", capitalize(field))
		}
		return 0, false
	}
	return v, true
}

func (p *parser) required(field, raw string, decimals int) float64 {
	v, _ := p.value(field, raw)
	return p.scaled(field, v, decimals)
}

// scaled rebases v and rounds it. A result that overflows is rejected.
func (p *parser) scaled(field string, v float64, decimals int) float64 {
	r := utils.RoundTo(v*p.scale, decimals)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		if p.err == nil {
			p.err = invalid(field, "%s is too large for the serving size", capitalize(field))
		}
		return 0
	}
	return r
}

// optional returns nil for blank input and for input that parses to zero.
func (p *parser) optional(field, raw string, decimals int) *float64 {
	v, ok := p.value(field, raw)
	if !ok || v == 0 {
		return nil
	}
	return models.Float(p.scaled(field, v, decimals))
}

// parseNumber accepts a decimal comma as typed on some keyboards.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
