package differ

import (
	"fmt"
	"sort"

	"github.com/yairfalse/driftwatch/pkg/types"
)

// StructuralDiffer recursively compares two JSON-like values and produces a
// flat list of per-field outcomes. Shape divergence is modeled as data, not
// errors: Compare never fails, whatever the inputs look like. The walk is
// pure and safe for concurrent use on independent inputs.
type StructuralDiffer struct {
	comparer *ValueComparer
	maxDepth int
}

// NewStructuralDiffer creates a differ with the given options
func NewStructuralDiffer(opts Options) *StructuralDiffer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &StructuralDiffer{
		comparer: NewValueComparer(opts.Tolerance),
		maxDepth: opts.MaxDepth,
	}
}

// Compare walks expected and actual in lock-step and returns every comparison
// outcome in traversal order. Map keys are visited lexicographically so the
// outcome list is stable and reports stay diffable across runs.
func (d *StructuralDiffer) Compare(expected, actual interface{}) []types.ComparisonOutcome {
	outcomes := make([]types.ComparisonOutcome, 0, 16)
	d.walk("", expected, actual, 0, &outcomes)
	return outcomes
}

func (d *StructuralDiffer) walk(path string, expected, actual interface{}, depth int, outcomes *[]types.ComparisonOutcome) {
	if depth > d.maxDepth {
		*outcomes = append(*outcomes, types.ComparisonOutcome{
			FieldPath: path,
			Expected:  fmt.Sprintf("nesting deeper than %d levels", d.maxDepth),
			Actual:    fmt.Sprintf("nesting deeper than %d levels", d.maxDepth),
			Match:     false,
			Kind:      types.DifferenceDepthExceeded,
		})
		return
	}

	expectedType := jsonTypeName(expected)
	actualType := jsonTypeName(actual)

	// Branch order matters: type check first, then containers, then scalars.
	if expectedType != actualType {
		kind := types.DifferenceTypeMismatch
		if isComposite(expectedType) || isComposite(actualType) {
			kind = types.DifferenceStructureTypeMismatch
		}
		*outcomes = append(*outcomes, types.ComparisonOutcome{
			FieldPath: path,
			Expected:  expectedType,
			Actual:    actualType,
			Match:     false,
			Kind:      kind,
		})
		return
	}

	switch expectedValue := expected.(type) {
	case map[string]interface{}:
		d.walkMap(path, expectedValue, actual.(map[string]interface{}), depth, outcomes)
	case []interface{}:
		d.walkList(path, expectedValue, actual.([]interface{}), depth, outcomes)
	default:
		d.compareScalar(path, expected, actual, outcomes)
	}
}

func (d *StructuralDiffer) walkMap(path string, expected, actual map[string]interface{}, depth int, outcomes *[]types.ComparisonOutcome) {
	for _, key := range sortedKeys(expected) {
		if _, ok := actual[key]; !ok {
			*outcomes = append(*outcomes, types.ComparisonOutcome{
				FieldPath: joinKey(path, key),
				Expected:  types.SentinelPresent,
				Actual:    types.SentinelMissing,
				Match:     false,
				Kind:      types.DifferenceMissingKey,
			})
		}
	}

	for _, key := range sortedKeys(actual) {
		if _, ok := expected[key]; !ok {
			*outcomes = append(*outcomes, types.ComparisonOutcome{
				FieldPath: joinKey(path, key),
				Expected:  types.SentinelMissing,
				Actual:    types.SentinelPresent,
				Match:     false,
				Kind:      types.DifferenceExtraKey,
			})
		}
	}

	for _, key := range sortedKeys(expected) {
		actualValue, ok := actual[key]
		if !ok {
			continue
		}
		d.walk(joinKey(path, key), expected[key], actualValue, depth+1, outcomes)
	}
}

func (d *StructuralDiffer) walkList(path string, expected, actual []interface{}, depth int, outcomes *[]types.ComparisonOutcome) {
	if len(expected) != len(actual) {
		*outcomes = append(*outcomes, types.ComparisonOutcome{
			FieldPath: joinKey(path, "length"),
			Expected:  len(expected),
			Actual:    len(actual),
			Match:     false,
			Kind:      types.DifferenceListLengthMismatch,
		})
	}

	// Elements beyond the shorter length are covered by the length outcome
	// only; they are not compared individually.
	limit := len(expected)
	if len(actual) < limit {
		limit = len(actual)
	}
	for i := 0; i < limit; i++ {
		d.walk(fmt.Sprintf("%s[%d]", path, i), expected[i], actual[i], depth+1, outcomes)
	}
}

func (d *StructuralDiffer) compareScalar(path string, expected, actual interface{}, outcomes *[]types.ComparisonOutcome) {
	match, toleranceApplied := d.comparer.Compare(expected, actual)

	kind := types.DifferenceNone
	if !match {
		if toleranceApplied {
			kind = types.DifferenceNumeric
		} else {
			kind = types.DifferenceValueMismatch
		}
	}

	*outcomes = append(*outcomes, types.ComparisonOutcome{
		FieldPath:        path,
		Expected:         expected,
		Actual:           actual,
		Match:            match,
		Kind:             kind,
		ToleranceApplied: toleranceApplied,
	})
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
