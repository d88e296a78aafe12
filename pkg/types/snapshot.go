package types

import (
	"errors"
	"strings"
	"time"
)

// Snapshot represents a point-in-time capture of an endpoint's JSON response.
// It is the expected baseline for later regression runs and is never mutated
// after capture.
type Snapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Data     interface{}      `json:"data"`
}

// SnapshotMetadata describes how and when a snapshot was captured.
type SnapshotMetadata struct {
	Endpoint       string            `json:"endpoint"`
	Params         map[string]string `json:"params"`
	Timestamp      time.Time         `json:"timestamp"`
	ResponseStatus int               `json:"response_status"`
	ResponseTime   float64           `json:"response_time"`
}

// Validate checks if the Snapshot has all required fields and valid values
func (s *Snapshot) Validate() error {
	if strings.TrimSpace(s.Metadata.Endpoint) == "" {
		return errors.New("snapshot endpoint is required")
	}
	if s.Metadata.Timestamp.IsZero() {
		return errors.New("snapshot timestamp is required")
	}
	if s.Metadata.ResponseStatus < 100 || s.Metadata.ResponseStatus > 599 {
		return errors.New("snapshot response status is out of range")
	}
	return nil
}

// GetParam returns the value of a specific capture parameter
func (s *Snapshot) GetParam(key string) string {
	if s.Metadata.Params == nil {
		return ""
	}
	return s.Metadata.Params[key]
}

// Clone creates a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	clone := &Snapshot{
		Metadata: SnapshotMetadata{
			Endpoint:       s.Metadata.Endpoint,
			Timestamp:      s.Metadata.Timestamp,
			ResponseStatus: s.Metadata.ResponseStatus,
			ResponseTime:   s.Metadata.ResponseTime,
		},
		Data: CloneValue(s.Data),
	}

	if s.Metadata.Params != nil {
		clone.Metadata.Params = make(map[string]string, len(s.Metadata.Params))
		for k, v := range s.Metadata.Params {
			clone.Metadata.Params[k] = v
		}
	}

	return clone
}

// CloneValue deep-copies a decoded JSON value (maps, slices, scalars).
func CloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, elem := range val {
			out[k] = CloneValue(elem)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = CloneValue(elem)
		}
		return out
	default:
		return val
	}
}

// String returns a string representation of the snapshot
func (s *Snapshot) String() string {
	return s.Metadata.Endpoint + " snapshot (" + s.Metadata.Timestamp.Format(time.RFC3339) + ")"
}
