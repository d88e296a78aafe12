package differ

import "testing"

func TestValueComparer_NumericTolerance(t *testing.T) {
	comparer := NewValueComparer(0.05)

	tests := []struct {
		name      string
		expected  interface{}
		actual    interface{}
		wantMatch bool
	}{
		{"exact match", float64(100), float64(100), true},
		{"within tolerance", float64(100), float64(105), true},
		{"just over tolerance", float64(100), float64(106), false},
		{"within tolerance below", float64(100), float64(95), true},
		{"just under tolerance below", float64(100), float64(94), false},
		{"zero matches zero", float64(0), float64(0), true},
		{"zero rejects nonzero", float64(0), float64(1), false},
		{"negative baseline within", float64(-100), float64(-104), true},
		{"negative baseline outside", float64(-100), float64(-106), false},
		{"int and float mix", 100, float64(103), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, toleranceApplied := comparer.Compare(tt.expected, tt.actual)
			if match != tt.wantMatch {
				t.Errorf("Compare(%v, %v) match = %v, want %v", tt.expected, tt.actual, match, tt.wantMatch)
			}
			if !toleranceApplied {
				t.Errorf("Compare(%v, %v) did not apply tolerance on numeric branch", tt.expected, tt.actual)
			}
		})
	}
}

func TestValueComparer_NonNumeric(t *testing.T) {
	comparer := NewValueComparer(0.05)

	tests := []struct {
		name      string
		expected  interface{}
		actual    interface{}
		wantMatch bool
	}{
		{"equal strings", "aberto", "aberto", true},
		{"different strings", "aberto", "fechado", false},
		{"equal bools", true, true, true},
		{"different bools", true, false, false},
		{"both null", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, toleranceApplied := comparer.Compare(tt.expected, tt.actual)
			if match != tt.wantMatch {
				t.Errorf("Compare(%v, %v) match = %v, want %v", tt.expected, tt.actual, match, tt.wantMatch)
			}
			if toleranceApplied {
				t.Errorf("Compare(%v, %v) applied tolerance to non-numeric values", tt.expected, tt.actual)
			}
		})
	}
}

func TestValueComparer_ToleranceBoundaryIsInclusive(t *testing.T) {
	comparer := NewValueComparer(0.05)

	// 105/100 sits exactly on the 5% boundary and must match.
	if match, _ := comparer.Compare(float64(100), float64(105)); !match {
		t.Error("boundary ratio 0.05 should match")
	}
}

func TestNewValueComparer_NegativeToleranceFallsBack(t *testing.T) {
	comparer := NewValueComparer(-1)
	if comparer.Tolerance() != DefaultTolerance {
		t.Errorf("expected default tolerance, got %v", comparer.Tolerance())
	}
}
