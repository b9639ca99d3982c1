package utils

import (
	"math"
	"strconv"
)

// RoundTo rounds v to the given number of decimal places, half away from zero.
// decimals <= 0 rounds to the nearest integer.
func RoundTo(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// ClampNonNegative returns 0 for negative or NaN values and v otherwise.
func ClampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// FormatNumber prints v with the fewest digits that read back exactly (64, 2.5, 0.07).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
