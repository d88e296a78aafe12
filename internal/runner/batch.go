package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	drifterrors "github.com/yairfalse/driftwatch/internal/errors"
	"github.com/yairfalse/driftwatch/pkg/types"
)

// DefaultBatchWorkers bounds batch concurrency when not configured.
const DefaultBatchWorkers = 4

// TestSpec defines one named endpoint test in a batch.
type TestSpec struct {
	Name     string
	Endpoint string
	Params   map[string]string
	Snapshot string
}

// SnapshotRef returns the snapshot reference for this test, defaulting to
// the test name.
func (s TestSpec) SnapshotRef() string {
	if s.Snapshot != "" {
		return s.Snapshot
	}
	return s.Name
}

// BatchResult is the outcome of one test within a batch run.
type BatchResult struct {
	Spec     TestSpec
	Report   *types.RegressionReport
	Captured bool
	Err      error
}

// Passed reports whether this batch entry counts as a success. A fresh
// baseline capture passes by definition; there is nothing to compare yet.
func (r BatchResult) Passed() bool {
	if r.Err != nil {
		return false
	}
	if r.Captured {
		return true
	}
	return r.Report != nil && r.Report.Summary.Success
}

// RunBatch executes a set of named endpoint tests concurrently, auto-capturing
// a baseline for any test that has none. Results come back in input order.
// Individual failures never abort the batch.
func (r *Runner) RunBatch(ctx context.Context, tests []TestSpec, workers int) []BatchResult {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}

	results := make([]BatchResult, len(tests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, spec := range tests {
		i, spec := i, spec
		g.Go(func() error {
			results[i] = r.runOne(ctx, spec)
			return nil
		})
	}

	// Workers only ever return nil; failures live inside each result.
	g.Wait() //nolint:errcheck

	return results
}

func (r *Runner) runOne(ctx context.Context, spec TestSpec) BatchResult {
	result := BatchResult{Spec: spec}
	ref := spec.SnapshotRef()

	if _, err := r.store.LoadSnapshot(ref); err != nil {
		if !drifterrors.IsType(err, drifterrors.ErrorTypeSnapshotNotFound) {
			result.Err = err
			return result
		}

		// First run for this test: establish the baseline instead of
		// comparing against nothing.
		r.log.WithField("test", spec.Name).Info("no baseline found, capturing one")
		if _, _, err := r.Capture(ctx, spec.Endpoint, spec.Params, ref); err != nil {
			result.Err = err
			return result
		}
		result.Captured = true
		return result
	}

	result.Report = r.Run(ctx, ref, spec.Endpoint, spec.Params, spec.Name)
	return result
}
