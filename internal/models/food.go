// Package models defines the canonical food record, history entries, and list selectors.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hyperjump/taberu/pkg/utils"
)

// Sentinels used when an upstream record has no name or brand.
const (
	UnknownProduct = "Unknown Product"
	UnknownBrand   = "Unknown Brand"
)

// Basis is the serving reference nutrient values are expressed against.
type Basis string

const (
	// BasisPer100g means values are per 100 grams.
	BasisPer100g Basis = "per_100g"
	// BasisPerServing means values are per the serving in Food.ServingDescription.
	BasisPerServing Basis = "per_serving"
)

// Source records where a food record came from.
type Source string

const (
	SourceHistory Source = "history"
	SourceRemote  Source = "remote"
	SourceManual  Source = "manual"
	SourceCatalog Source = "catalog"
)

// Food is the canonical food record exchanged between all sources.
// Macros are always present; micronutrients are nil when unknown, which is
// not the same as zero. Sodium, potassium and cholesterol are in milligrams,
// everything else in grams (calories in kcal).
type Food struct {
	Barcode            string   `json:"barcode,omitempty"`
	Name               string   `json:"name"`
	Brand              string   `json:"brand"`
	Calories           float64  `json:"calories"`
	Protein            float64  `json:"protein"`
	Carbs              float64  `json:"carbs"`
	Fat                float64  `json:"fat"`
	Basis              Basis    `json:"basis"`
	ServingSize        string   `json:"serving_size,omitempty"`
	ServingDescription string   `json:"serving_description,omitempty"`
	Fiber              *float64 `json:"fiber,omitempty"`
	Sugars             *float64 `json:"sugars,omitempty"`
	SaturatedFat       *float64 `json:"saturated_fat,omitempty"`
	Sodium             *float64 `json:"sodium,omitempty"`
	Potassium          *float64 `json:"potassium,omitempty"`
	Cholesterol        *float64 `json:"cholesterol,omitempty"`
	Categories         []string `json:"categories,omitempty"`
	Source             Source   `json:"source,omitempty"`
}

// Key is the identity of a food record: name and brand, case-insensitive.
// Barcode is deliberately not part of it since manual and searched records
// often lack one. Two products sharing name and brand collide.
type Key struct {
	Name  string
	Brand string
}

// IdentityKey returns the key for a name/brand pair.
func IdentityKey(name, brand string) Key {
	return Key{Name: utils.Fold(name), Brand: utils.Fold(brand)}
}

// String encodes the key as a single stable string (used as index and row IDs).
func (k Key) String() string {
	return k.Name + "\x1f" + k.Brand
}

// Key returns the identity key of f.
func (f *Food) Key() Key {
	return IdentityKey(f.Name, f.Brand)
}

// IsPer100g reports whether values can be read as per-100g values.
// Records without an explicit basis predate tagging and are per 100 g.
func (f *Food) IsPer100g() bool {
	return f.Basis == "" || f.Basis == BasisPer100g
}

// WithSource returns a shallow copy of f tagged with src.
func (f *Food) WithSource(src Source) *Food {
	c := *f
	c.Source = src
	return &c
}

// Clone returns a deep copy of f; micronutrient pointers and categories are
// not shared with the original.
func (f *Food) Clone() *Food {
	if f == nil {
		return nil
	}
	c := *f
	for _, p := range []**float64{&c.Fiber, &c.Sugars, &c.SaturatedFat, &c.Sodium, &c.Potassium, &c.Cholesterol} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	if f.Categories != nil {
		c.Categories = append([]string(nil), f.Categories...)
	}
	return &c
}

// CheckNutrients reports the first nutrient that is negative or not a finite number.
func (f *Food) CheckNutrients() error {
	values := []struct {
		name string
		v    *float64
	}{
		{"calories", &f.Calories},
		{"protein", &f.Protein},
		{"carbs", &f.Carbs},
		{"fat", &f.Fat},
		{"fiber", f.Fiber},
		{"sugars", f.Sugars},
		{"saturated_fat", f.SaturatedFat},
		{"sodium", f.Sodium},
		{"potassium", f.Potassium},
		{"cholesterol", f.Cholesterol},
	}
	for _, n := range values {
		if n.v == nil {
			continue
		}
		if math.IsNaN(*n.v) || math.IsInf(*n.v, 0) {
			return fmt.Errorf("%s is not a finite number", n.name)
		}
		if *n.v < 0 {
			return fmt.Errorf("%s must not be negative", n.name)
		}
	}
	return nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// DisplayName is "Name (Brand)" without the brand sentinel.
func (f *Food) DisplayName() string {
	if f.Brand == "" || f.Brand == UnknownBrand {
		return f.Name
	}
	return f.Name + " (" + f.Brand + ")"
}

// MealType is the meal an entry was logged against.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// ParseMealType parses s case-insensitively. Empty input yields MealSnack.
func ParseMealType(s string) (MealType, bool) {
	switch MealType(utils.Fold(s)) {
	case MealBreakfast:
		return MealBreakfast, true
	case MealLunch:
		return MealLunch, true
	case MealDinner:
		return MealDinner, true
	case MealSnack, "":
		return MealSnack, true
	}
	return "", false
}

// MealTypeAt picks a default meal type from the time of day.
func MealTypeAt(t time.Time) MealType {
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return MealBreakfast
	case h >= 11 && h < 16:
		return MealLunch
	case h >= 17 && h < 22:
		return MealDinner
	}
	return MealSnack
}

// Entry is one logged food in the daily history.
type Entry struct {
	ID       string    `json:"id"`
	Food     *Food     `json:"food"`
	MealType MealType  `json:"meal_type"`
	LoggedAt time.Time `json:"logged_at"`
}

// Normalize fills the name and brand sentinels and a missing basis.
// Used by every source before a record enters the pipeline.
func (f *Food) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Brand = strings.TrimSpace(f.Brand)
	if f.Name == "" {
		f.Name = UnknownProduct
	}
	if f.Brand == "" {
		f.Brand = UnknownBrand
	}
	if f.Basis == "" {
		f.Basis = BasisPer100g
	}
}
