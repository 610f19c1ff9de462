// Package money holds the shared monetary conventions: amounts are 2-decimal
// floats, and anything within Epsilon of zero is treated as zero.
package money

import "math"

// Epsilon is the zero threshold for monetary comparisons. Stored balances
// with an absolute value below it are pruned rather than kept as near-zero
// noise.
const Epsilon = 0.01

// Round2 rounds a value to 2 decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// IsZero reports whether an amount is within Epsilon of zero.
func IsZero(amount float64) bool {
	return math.Abs(amount) < Epsilon
}
