package grading

import "math"

// withinTolerance reports |got-want| <= tol. A negative or NaN tolerance is
// treated as exact match.
func withinTolerance(got, want, tol float64) bool {
	if math.IsNaN(got) || math.IsInf(got, 0) || math.IsNaN(want) {
		return false
	}
	if math.IsNaN(tol) || tol < 0 {
		tol = 0
	}
	diff := math.Abs(got - want)
	if diff <= tol {
		return true
	}
	// absorb binary rounding, e.g. 0.1+0.2 against 0.3 with tol 0
	return diff <= 1e-9*math.Max(1, math.Abs(want))
}
