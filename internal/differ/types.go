package differ

// JSON type names as reported in type-mismatch outcomes.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeUnknown = "unknown"
)

// DefaultTolerance is the relative-error threshold applied to numeric
// comparisons when none is configured.
const DefaultTolerance = 0.05

// DefaultMaxDepth bounds recursion on adversarial or pathological input.
const DefaultMaxDepth = 50

// Options configures how values are compared
type Options struct {
	// Tolerance is the maximum relative error |expected-actual|/|expected|
	// accepted between two numeric values.
	Tolerance float64

	// MaxDepth is the maximum nesting depth walked before emitting a
	// depth_exceeded outcome instead of descending further.
	MaxDepth int
}

// DefaultOptions returns comparison options with the default tolerance and
// depth limit.
func DefaultOptions() Options {
	return Options{
		Tolerance: DefaultTolerance,
		MaxDepth:  DefaultMaxDepth,
	}
}

// jsonTypeName maps a decoded JSON value to its JSON type name. Integer Go
// values are grouped with floats under "number" so that values built in code
// compare like values decoded from a response body.
func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeNumber
	case string:
		return TypeString
	case map[string]interface{}:
		return TypeObject
	case []interface{}:
		return TypeArray
	default:
		return TypeUnknown
	}
}

// isComposite reports whether the JSON type name denotes a container.
func isComposite(typeName string) bool {
	return typeName == TypeObject || typeName == TypeArray
}
