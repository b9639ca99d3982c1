// Package details flattens a food record into the string parameters the
// details screen is opened with, and parses them back when it logs the food.
package details

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/pkg/utils"
)

// Parameter names.
const (
	KeyBarcode            = "barcode"
	KeyName               = "name"
	KeyBrand              = "brand"
	KeyCalories           = "calories"
	KeyProtein            = "protein"
	KeyCarbs              = "carbs"
	KeyFat                = "fat"
	KeyBasis              = "basis"
	KeyServingSize        = "servingSize"
	KeyServingDescription = "servingDescription"
	KeyFiber              = "fiber"
	KeySugars             = "sugars"
	KeySaturatedFat       = "saturatedFat"
	KeySodium             = "sodium"
	KeyPotassium          = "potassium"
	KeyCholesterol        = "cholesterol"
	KeyCategories         = "categories"
	KeySource             = "source"
	KeyMealType           = "mealType"
)

// Params returns the details parameters for food. Unknown micronutrients are
// omitted rather than sent as zero; mealType is omitted when empty.
func Params(food *models.Food, mealType models.MealType) map[string]string {
	p := map[string]string{
		KeyName:     food.Name,
		KeyBrand:    food.Brand,
		KeyCalories: utils.FormatNumber(food.Calories),
		KeyProtein:  utils.FormatNumber(food.Protein),
		KeyCarbs:    utils.FormatNumber(food.Carbs),
		KeyFat:      utils.FormatNumber(food.Fat),
		KeyBasis:    string(food.Basis),
	}
	if p[KeyBasis] == "" {
		p[KeyBasis] = string(models.BasisPer100g)
	}
	setString(p, KeyBarcode, food.Barcode)
	setString(p, KeyServingSize, food.ServingSize)
	setString(p, KeyServingDescription, food.ServingDescription)
	setString(p, KeySource, string(food.Source))
	setString(p, KeyMealType, string(mealType))
	if len(food.Categories) > 0 {
		p[KeyCategories] = strings.Join(food.Categories, ",")
	}
	for key, v := range micros(food) {
		if *v != nil {
			p[key] = utils.FormatNumber(**v)
		}
	}
	return p
}

// FromParams rebuilds a food record and meal type from details parameters.
// Name and brand are required; blank numbers read as zero, blank
// micronutrients as unknown.
func FromParams(p map[string]string) (*models.Food, models.MealType, error) {
	food := &models.Food{
		Barcode:            p[KeyBarcode],
		Name:               strings.TrimSpace(p[KeyName]),
		Brand:              strings.TrimSpace(p[KeyBrand]),
		Basis:              models.Basis(p[KeyBasis]),
		ServingSize:        p[KeyServingSize],
		ServingDescription: p[KeyServingDescription],
		Source:             models.Source(p[KeySource]),
	}
	if food.Name == "" || food.Brand == "" {
		return nil, "", fmt.Errorf("details params require %s and %s", KeyName, KeyBrand)
	}
	switch food.Basis {
	case "", models.BasisPer100g, models.BasisPerServing:
	default:
		return nil, "", fmt.Errorf("unknown basis %q", food.Basis)
	}

	var err error
	macros := []struct {
		key string
		dst *float64
	}{
		{KeyCalories, &food.Calories},
		{KeyProtein, &food.Protein},
		{KeyCarbs, &food.Carbs},
		{KeyFat, &food.Fat},
	}
	for _, m := range macros {
		if *m.dst, err = parse(p, m.key); err != nil {
			return nil, "", err
		}
	}
	for key, dst := range micros(food) {
		s := strings.TrimSpace(p[key])
		if s == "" {
			continue
		}
		v, err := parse(p, key)
		if err != nil {
			return nil, "", err
		}
		*dst = models.Float(v)
	}
	if c := strings.TrimSpace(p[KeyCategories]); c != "" {
		food.Categories = strings.Split(c, ",")
	}

	meal, ok := models.ParseMealType(p[KeyMealType])
	if !ok {
		return nil, "", fmt.Errorf("unknown meal type %q", p[KeyMealType])
	}
	food.Normalize()
	return food, meal, nil
}

func micros(f *models.Food) map[string]**float64 {
	return map[string]**float64{
		KeyFiber:        &f.Fiber,
		KeySugars:       &f.Sugars,
		KeySaturatedFat: &f.SaturatedFat,
		KeySodium:       &f.Sodium,
		KeyPotassium:    &f.Potassium,
		KeyCholesterol:  &f.Cholesterol,
	}
}

func parse(p map[string]string, key string) (float64, error) {
	s := strings.TrimSpace(p[key])
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return v, nil
}

func setString(p map[string]string, key, v string) {
	if v != "" {
		p[key] = v
	}
}
