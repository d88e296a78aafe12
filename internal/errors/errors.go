package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeCapture          ErrorType = "Capture"
	ErrorTypeFetch            ErrorType = "Fetch"
	ErrorTypeSnapshotNotFound ErrorType = "SnapshotNotFound"
	ErrorTypeSnapshotCorrupt  ErrorType = "SnapshotCorrupt"
	ErrorTypeNoSnapshot       ErrorType = "NoSnapshot"
	ErrorTypeStorage          ErrorType = "Storage"
	ErrorTypeConfiguration    ErrorType = "Configuration"
	ErrorTypeValidation       ErrorType = "Validation"
)

// DriftError represents a user-friendly error with actionable guidance
type DriftError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Solutions []string
	Verify    string
	Help      string
}

// Error implements the error interface
func (e *DriftError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("\nCause: %v", e.Cause))
	}

	if len(e.Solutions) > 0 {
		sb.WriteString("\n\nSolutions:")
		for _, solution := range e.Solutions {
			sb.WriteString(fmt.Sprintf("\n  - %s", solution))
		}
	}

	if e.Verify != "" {
		sb.WriteString(fmt.Sprintf("\n\nVerify: %s", e.Verify))
	}

	if e.Help != "" {
		sb.WriteString(fmt.Sprintf("\nHelp: %s", e.Help))
	}

	return sb.String()
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains
func (e *DriftError) Unwrap() error {
	return e.Cause
}

// New creates a new DriftError
func New(errType ErrorType, message string) *DriftError {
	return &DriftError{
		Type:    errType,
		Message: message,
	}
}

// WithCause attaches the underlying error
func (e *DriftError) WithCause(cause error) *DriftError {
	e.Cause = cause
	return e
}

// WithSolutions adds solution steps
func (e *DriftError) WithSolutions(solutions ...string) *DriftError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithVerify adds a verification command
func (e *DriftError) WithVerify(verify string) *DriftError {
	e.Verify = verify
	return e
}

// WithHelp adds a help command
func (e *DriftError) WithHelp(help string) *DriftError {
	e.Help = help
	return e
}

// CaptureFailed builds the error for a failed baseline capture
func CaptureFailed(endpoint string, cause error) *DriftError {
	return New(ErrorTypeCapture, fmt.Sprintf("failed to capture baseline from %s", endpoint)).
		WithCause(cause).
		WithSolutions(
			"check that the service base URL is reachable",
			"confirm the endpoint path and query parameters",
		).
		WithVerify(fmt.Sprintf("curl -s <base-url>%s", endpoint)).
		WithHelp("driftwatch capture --help")
}

// FetchFailed builds the error for a failed live fetch during a regression run
func FetchFailed(endpoint string, cause error) *DriftError {
	return New(ErrorTypeFetch, fmt.Sprintf("failed to fetch current data from %s", endpoint)).
		WithCause(cause).
		WithSolutions(
			"check that the service base URL is reachable",
			"increase the request timeout if the endpoint is slow",
		).
		WithHelp("driftwatch test --help")
}

// SnapshotNotFound builds the error for a missing stored snapshot
func SnapshotNotFound(ref string) *DriftError {
	return New(ErrorTypeSnapshotNotFound, fmt.Sprintf("snapshot not found: %s", ref)).
		WithSolutions(
			"list stored snapshots with 'driftwatch snapshots'",
			"capture a new baseline with 'driftwatch capture'",
		)
}

// SnapshotCorrupt builds the error for an undecodable stored snapshot
func SnapshotCorrupt(ref string, cause error) *DriftError {
	return New(ErrorTypeSnapshotCorrupt, fmt.Sprintf("stored snapshot cannot be decoded: %s", ref)).
		WithCause(cause).
		WithSolutions("re-capture the baseline; the stored file is damaged")
}

// NoSnapshot builds the error for a pattern that matches no stored snapshot
func NoSnapshot(pattern string) *DriftError {
	return New(ErrorTypeNoSnapshot, fmt.Sprintf("no stored snapshot matches pattern %q", pattern)).
		WithSolutions("capture a baseline first with 'driftwatch capture'")
}

// IsType checks whether err is (or wraps) a DriftError of the given type
func IsType(err error, errType ErrorType) bool {
	var driftErr *DriftError
	if errors.As(err, &driftErr) {
		return driftErr.Type == errType
	}
	return false
}

// ExitCode maps an error to the CLI exit code. A DriftError means the run
// could not happen at all, which is distinct from a detected regression
// (exit code 1, decided by the caller).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var driftErr *DriftError
	if errors.As(err, &driftErr) {
		return 2
	}
	return 1
}
