// internal/pkg/money/money.go
package money

import "math"

// Tolerance is the maximum difference under which two monetary amounts are
// considered equal after client-side float arithmetic.
const Tolerance = 0.01

// Round rounds a monetary amount to 2 decimal places
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Equal reports whether two amounts match within Tolerance
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}
