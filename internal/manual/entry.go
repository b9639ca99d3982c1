// Package manual converts user-typed nutrition values into canonical food records.
package manual

import (
	"fmt"
	"strings"
)

// Unit is the serving unit picked on the manual entry form.
type Unit string

const (
	UnitGram       Unit = "gram"
	UnitServing    Unit = "serving"
	UnitTablespoon Unit = "tablespoon"
	UnitCup        Unit = "cup"
	UnitPiece      Unit = "piece"
)

// Units lists the accepted serving units in form order.
var Units = []Unit{UnitGram, UnitServing, UnitTablespoon, UnitCup, UnitPiece}

// ParseUnit accepts the unit names and their usual abbreviations.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gram", "grams", "g", "":
		return UnitGram, nil
	case "serving", "servings":
		return UnitServing, nil
	case "tablespoon", "tablespoons", "tbsp":
		return UnitTablespoon, nil
	case "cup", "cups":
		return UnitCup, nil
	case "piece", "pieces", "pc":
		return UnitPiece, nil
	}
	return "", fmt.Errorf("unknown serving unit %q", s)
}

// Abbrev is the short label used in serving size strings ("78 g").
func (u Unit) Abbrev() string {
	switch u {
	case UnitGram:
		return "g"
	case UnitTablespoon:
		return "tbsp"
	}
	return string(u)
}

// Entry is the manual entry form as typed: every number is still a string,
// and an empty string means the field was left blank.
type Entry struct {
	Barcode      string `json:"barcode,omitempty"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Amount       string `json:"amount"`
	Unit         Unit   `json:"unit"`
	Calories     string `json:"calories,omitempty"`
	Protein      string `json:"protein,omitempty"`
	Carbs        string `json:"carbs,omitempty"`
	Fat          string `json:"fat,omitempty"`
	Fiber        string `json:"fiber,omitempty"`
	Sugars       string `json:"sugars,omitempty"`
	SaturatedFat string `json:"saturated_fat,omitempty"`
	Sodium       string `json:"sodium,omitempty"`
	Potassium    string `json:"potassium,omitempty"`
	Cholesterol  string `json:"cholesterol,omitempty"`
}

// ValidationError is a user-facing rejection of a manual entry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
