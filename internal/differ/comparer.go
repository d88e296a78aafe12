package differ

import "math"

// ValueComparer decides equality between two scalar values that already share
// the same JSON type. Numeric values match within a relative tolerance; every
// other scalar type requires exact equality.
type ValueComparer struct {
	tolerance float64
}

// NewValueComparer creates a comparer with the given relative tolerance.
// A negative tolerance falls back to the default.
func NewValueComparer(tolerance float64) *ValueComparer {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	return &ValueComparer{tolerance: tolerance}
}

// Compare reports whether expected and actual match, and whether the numeric
// tolerance rule was the deciding branch. When expected is zero the actual
// value must be exactly zero; relative error against zero is undefined.
func (c *ValueComparer) Compare(expected, actual interface{}) (match, toleranceApplied bool) {
	expectedNum, expectedOK := toFloat(expected)
	actualNum, actualOK := toFloat(actual)

	if expectedOK && actualOK {
		if expectedNum == 0 {
			return actualNum == 0, true
		}
		ratio := math.Abs(expectedNum-actualNum) / math.Abs(expectedNum)
		return ratio <= c.tolerance, true
	}

	return expected == actual, false
}

// Tolerance returns the configured relative tolerance
func (c *ValueComparer) Tolerance() float64 {
	return c.tolerance
}

// toFloat converts any numeric Go value to float64. JSON decoding always
// yields float64, but values assembled in code may carry integer types.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
