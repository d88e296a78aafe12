package types

// DifferenceKind classifies a single comparison outcome.
type DifferenceKind string

const (
	DifferenceNone                  DifferenceKind = "none"
	DifferenceTypeMismatch          DifferenceKind = "type_mismatch"
	DifferenceNumeric               DifferenceKind = "numeric"
	DifferenceValueMismatch         DifferenceKind = "value_mismatch"
	DifferenceMissingKey            DifferenceKind = "missing_key"
	DifferenceExtraKey              DifferenceKind = "extra_key"
	DifferenceStructureTypeMismatch DifferenceKind = "structure_type_mismatch"
	DifferenceListLengthMismatch    DifferenceKind = "list_length_mismatch"
	DifferenceExecutionError        DifferenceKind = "execution_error"
	DifferenceDepthExceeded         DifferenceKind = "depth_exceeded"
)

// Sentinel values used in key-presence outcomes instead of real values.
const (
	SentinelMissing = "<missing>"
	SentinelPresent = "<present>"
)

// ComparisonOutcome is one leaf-level result of a structural diff.
// Invariant: Match is true exactly when Kind is DifferenceNone.
type ComparisonOutcome struct {
	FieldPath        string         `json:"field_path"`
	Expected         interface{}    `json:"expected_value"`
	Actual           interface{}    `json:"actual_value"`
	Match            bool           `json:"match"`
	Kind             DifferenceKind `json:"difference_type"`
	ToleranceApplied bool           `json:"tolerance_applied"`
}
