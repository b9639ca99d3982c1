package manual

import (
	"errors"
	"testing"

	"github.com/hyperjump/taberu/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEntry() *Entry {
	return &Entry{
		Name:     "Greek Yogurt",
		Brand:    "Acme",
		Amount:   "100",
		Unit:     UnitGram,
		Calories: "97",
		Protein:  "9",
		Carbs:    "3.98",
		Fat:      "5",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(e *Entry)
		wantField string
	}{
		{"missing name", func(e *Entry) { e.Name = "  " }, "name"},
		{"missing brand", func(e *Entry) { e.Brand = "" }, "brand"},
		{"missing amount", func(e *Entry) { e.Amount = "" }, "amount"},
		{"no macros", func(e *Entry) { e.Calories, e.Protein, e.Carbs, e.Fat = "", "", " ", "" }, "calories"},
		{"only fat is enough", func(e *Entry) { e.Calories, e.Protein, e.Carbs = "", "", "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := baseEntry()
			tt.mutate(e)
			err := Validate(e)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestNormalize_Gram100IsIdentity(t *testing.T) {
	e := baseEntry()
	e.Fiber, e.Sugars, e.SaturatedFat, e.Sodium, e.Potassium = "1.5", "3", "2.1", "36", "141"

	food, err := Normalize(e)
	require.NoError(t, err)
	assert.Equal(t, 97.0, food.Calories)
	assert.Equal(t, 9.0, food.Protein)
	assert.Equal(t, 3.98, food.Carbs)
	assert.Equal(t, 5.0, food.Fat)
	assert.Equal(t, 1.5, *food.Fiber)
	assert.Equal(t, 3.0, *food.Sugars)
	assert.Equal(t, 2.1, *food.SaturatedFat)
	assert.Equal(t, 36.0, *food.Sodium)
	assert.Equal(t, 141.0, *food.Potassium)
	assert.Equal(t, models.BasisPer100g, food.Basis)
	assert.Equal(t, "100 g", food.ServingSize)
	assert.Equal(t, models.SourceManual, food.Source)
}

func TestNormalize_GramScaling(t *testing.T) {
	tests := []struct {
		amount       string
		calories     string
		wantCalories float64
	}{
		{"50", "100", 200},
		{"200", "100", 50},
		{"78", "120", 154},
		{"25,5", "51", 200},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			e := baseEntry()
			e.Amount, e.Calories = tt.amount, tt.calories
			food, err := Normalize(e)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalories, food.Calories)
			assert.Equal(t, models.BasisPer100g, food.Basis)
		})
	}
}

func TestNormalize_ScalesEveryNutrient(t *testing.T) {
	e := &Entry{
		Name: "Bar", Brand: "Acme", Amount: "50", Unit: UnitGram,
		Calories: "100", Protein: "5", Carbs: "10", Fat: "2.5",
		Fiber: "1", Sugars: "4", SaturatedFat: "0.5", Sodium: "60", Potassium: "80", Cholesterol: "3",
	}
	food, err := Normalize(e)
	require.NoError(t, err)
	assert.Equal(t, 200.0, food.Calories)
	assert.Equal(t, 10.0, food.Protein)
	assert.Equal(t, 20.0, food.Carbs)
	assert.Equal(t, 5.0, food.Fat)
	assert.Equal(t, 2.0, *food.Fiber)
	assert.Equal(t, 8.0, *food.Sugars)
	assert.Equal(t, 1.0, *food.SaturatedFat)
	assert.Equal(t, 120.0, *food.Sodium)
	assert.Equal(t, 160.0, *food.Potassium)
	assert.Equal(t, 6.0, *food.Cholesterol)
	assert.Equal(t, "50 g", food.ServingSize)
}

func TestNormalize_NonGramPassesThroughRounded(t *testing.T) {
	for _, unit := range []Unit{UnitServing, UnitTablespoon, UnitCup, UnitPiece} {
		t.Run(string(unit), func(t *testing.T) {
			e := baseEntry()
			e.Unit, e.Amount, e.Protein, e.Calories = unit, "1", "12.345", "250.4"
			food, err := Normalize(e)
			require.NoError(t, err)
			assert.Equal(t, 12.35, food.Protein, "protein must not be rescaled")
			assert.Equal(t, 250.0, food.Calories)
			assert.Equal(t, models.BasisPerServing, food.Basis)
			assert.Equal(t, "1 "+unit.Abbrev(), food.ServingDescription)
		})
	}
}

func TestNormalize_ZeroOptionalBecomesAbsent(t *testing.T) {
	e := baseEntry()
	e.Calories, e.Protein, e.Carbs = "0", "0", "0"
	e.Fiber, e.Sodium, e.Sugars = "0", "0.0", ""
	food, err := Normalize(e)
	require.NoError(t, err)
	assert.Nil(t, food.Fiber)
	assert.Nil(t, food.Sodium)
	assert.Nil(t, food.Sugars)
	assert.Equal(t, 0.0, food.Calories, "macros stay present when zero")
	assert.Equal(t, 0.0, food.Protein)
}

func TestNormalize_Rounding(t *testing.T) {
	e := baseEntry()
	e.Calories, e.Fat, e.Sodium, e.Potassium = "97.6", "5.555", "12.4", "99.5"
	food, err := Normalize(e)
	require.NoError(t, err)
	assert.Equal(t, 98.0, food.Calories)
	assert.Equal(t, 5.56, food.Fat)
	assert.Equal(t, 12.0, *food.Sodium)
	assert.Equal(t, 100.0, *food.Potassium)
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(e *Entry)
		wantField string
	}{
		{"zero amount", func(e *Entry) { e.Amount = "0" }, "amount"},
		{"text amount", func(e *Entry) { e.Amount = "lots" }, "amount"},
		{"negative protein", func(e *Entry) { e.Protein = "-1" }, "protein"},
		{"bad sodium", func(e *Entry) { e.Sodium = "abc" }, "sodium"},
		{"nan fat", func(e *Entry) { e.Fat = "NaN" }, "fat"},
		{"unknown unit", func(e *Entry) { e.Unit = "bucket" }, "unit"},
		{"scaled protein overflows", func(e *Entry) { e.Amount = "0.0000001"; e.Protein = "1e300" }, "protein"},
		{"scaled sodium overflows", func(e *Entry) { e.Amount = "0.0000001"; e.Sodium = "1e305" }, "sodium"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := baseEntry()
			tt.mutate(e)
			food, err := Normalize(e)
			assert.Nil(t, food)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"g": UnitGram, "Tbsp": UnitTablespoon, "cups": UnitCup, "": UnitGram, "piece": UnitPiece} {
		got, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseUnit("litre")
	assert.Error(t, err)
}
