package nutrition

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/pkg/utils"
)

const kjPerKcal = 4.184

// productEnvelope is the lookup-by-barcode response. Status is 1 when found.
type productEnvelope struct {
	Status  json.Number `json:"status"`
	Product *offProduct `json:"product"`
}

func (e *productEnvelope) found() bool {
	n, err := e.Status.Int64()
	return err == nil && n == 1 && e.Product != nil
}

// searchEnvelope is the free-text search response.
type searchEnvelope struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}

// offProduct is the subset of an Open Food Facts product this adapter reads.
type offProduct struct {
	Code           string         `json:"code"`
	ProductName    string         `json:"product_name"`
	ProductNameEn  string         `json:"product_name_en"`
	GenericName    string         `json:"generic_name"`
	Brands         string         `json:"brands"`
	ServingSize    string         `json:"serving_size"`
	CategoriesTags []string       `json:"categories_tags"`
	Nutriments     map[string]any `json:"nutriments"`
}

func (p *offProduct) name() string {
	for _, n := range []string{p.ProductName, p.ProductNameEn, p.GenericName} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return ""
}

// brand is the first entry of the comma-separated brands list.
func (p *offProduct) brand() string {
	first, _, _ := strings.Cut(p.Brands, ",")
	return strings.TrimSpace(first)
}

// shapeProduct converts an upstream product to the canonical record.
// Missing macros become 0, missing micronutrients stay nil.
func shapeProduct(p *offProduct, fallbackCode string) *models.Food {
	n := nutriments(p.Nutriments)
	calories, ok := n.get("energy-kcal_100g")
	if !ok {
		if kj, ok := n.get("energy_100g"); ok {
			calories = kj / kjPerKcal
		}
	}
	code := strings.TrimSpace(p.Code)
	if code == "" {
		code = fallbackCode
	}
	food := &models.Food{
		Barcode:      code,
		Name:         p.name(),
		Brand:        p.brand(),
		Calories:     utils.RoundTo(calories, 0),
		Protein:      utils.RoundTo(n.value("proteins_100g"), 2),
		Carbs:        utils.RoundTo(n.value("carbohydrates_100g"), 2),
		Fat:          utils.RoundTo(n.value("fat_100g"), 2),
		Fiber:        n.optional("fiber_100g", 1),
		Sugars:       n.optional("sugars_100g", 1),
		SaturatedFat: n.optional("saturated-fat_100g", 1),
		Sodium:       n.optional("sodium_100g", 1000),
		Potassium:    n.optional("potassium_100g", 1000),
		Cholesterol:  n.optional("cholesterol_100g", 1000),
		ServingSize:  strings.TrimSpace(p.ServingSize),
		Basis:        models.BasisPer100g,
		Source:       models.SourceRemote,
	}
	if len(p.CategoriesTags) > 0 {
		food.Categories = append([]string(nil), p.CategoriesTags...)
	}
	food.Normalize()
	return food
}

// nutriments reads the upstream map, where values are numbers or numeric strings.
type nutriments map[string]any

func (n nutriments) get(key string) (float64, bool) {
	raw, ok := n[key]
	if !ok || raw == nil {
		return 0, false
	}
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return utils.ClampNonNegative(v), true
}

func (n nutriments) value(key string) float64 {
	v, _ := n.get(key)
	return v
}

// optional reads key scaled by factor (1000 converts grams to milligrams).
// Milligram values are rounded to integers, gram values to 2 decimals.
func (n nutriments) optional(key string, factor float64) *float64 {
	v, ok := n.get(key)
	if !ok {
		return nil
	}
	decimals := 2
	if factor >= 1000 {
		decimals = 0
	}
	return models.Float(utils.RoundTo(v*factor, decimals))
}
