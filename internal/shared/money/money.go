// Package money holds decimal helpers for monetary amounts stored as float64.
package money

import "math"

// Round rounds v half away from zero to 2 decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Sum adds the amounts and rounds the result.
func Sum(values ...float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return Round(total)
}

// LessOrEqual compares two amounts at cent precision.
func LessOrEqual(a, b float64) bool {
	return math.Round(a*100) <= math.Round(b*100)
}

// Equal compares two amounts at cent precision.
func Equal(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
