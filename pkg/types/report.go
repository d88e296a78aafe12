package types

import (
	"errors"
	"strings"
	"time"
)

// RegressionReport is the persisted, immutable result of one comparison run.
// Differences holds failing outcomes only, in traversal order.
type RegressionReport struct {
	TestName    string              `json:"test_name"`
	Timestamp   time.Time           `json:"timestamp"`
	Summary     ReportSummary       `json:"summary"`
	Differences []ComparisonOutcome `json:"differences"`
}

// ReportSummary provides high-level statistics about a regression run.
// ExecutionTime is in seconds.
type ReportSummary struct {
	TotalComparisons  int     `json:"total_comparisons"`
	PassedComparisons int     `json:"passed_comparisons"`
	FailedComparisons int     `json:"failed_comparisons"`
	Success           bool    `json:"success"`
	ExecutionTime     float64 `json:"execution_time"`
}

// NewRegressionReport assembles a report from a full outcome list, keeping
// only failing outcomes as differences and deriving the summary counts.
func NewRegressionReport(testName string, outcomes []ComparisonOutcome, executionTime time.Duration) *RegressionReport {
	report := &RegressionReport{
		TestName:    testName,
		Timestamp:   time.Now().UTC(),
		Differences: []ComparisonOutcome{},
	}

	for _, outcome := range outcomes {
		report.Summary.TotalComparisons++
		if outcome.Match {
			report.Summary.PassedComparisons++
		} else {
			report.Summary.FailedComparisons++
			report.Differences = append(report.Differences, outcome)
		}
	}

	report.Summary.Success = report.Summary.FailedComparisons == 0
	report.Summary.ExecutionTime = executionTime.Seconds()

	return report
}

// Validate checks the report's internal invariants
func (r *RegressionReport) Validate() error {
	if strings.TrimSpace(r.TestName) == "" {
		return errors.New("report test name is required")
	}
	if r.Timestamp.IsZero() {
		return errors.New("report timestamp is required")
	}
	if r.Summary.TotalComparisons != r.Summary.PassedComparisons+r.Summary.FailedComparisons {
		return errors.New("report comparison counts do not add up")
	}
	if r.Summary.Success != (r.Summary.FailedComparisons == 0) {
		return errors.New("report success flag disagrees with failure count")
	}
	if len(r.Differences) != r.Summary.FailedComparisons {
		return errors.New("report differences do not match failure count")
	}
	for i := range r.Differences {
		if r.Differences[i].Match {
			return errors.New("report differences must contain failing outcomes only")
		}
	}
	return nil
}
