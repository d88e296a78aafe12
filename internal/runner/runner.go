package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yairfalse/driftwatch/internal/differ"
	drifterrors "github.com/yairfalse/driftwatch/internal/errors"
	"github.com/yairfalse/driftwatch/internal/fetcher"
	"github.com/yairfalse/driftwatch/internal/logger"
	"github.com/yairfalse/driftwatch/internal/storage"
	"github.com/yairfalse/driftwatch/pkg/types"
)

// Runner orchestrates regression tests: it loads a stored baseline, fetches
// the current endpoint state, diffs the two, and assembles a report.
type Runner struct {
	store   storage.Store
	client  *fetcher.Client
	options differ.Options
	log     logger.Logger
}

// New creates a Runner
func New(store storage.Store, client *fetcher.Client, options differ.Options, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewSimple()
	}
	return &Runner{
		store:   store,
		client:  client,
		options: options,
		log:     log,
	}
}

// Capture fetches the endpoint once and stores the response as a named
// baseline snapshot. The name is derived from the endpoint and capture time
// when empty. Returns the snapshot and the file it was written to.
func (r *Runner) Capture(ctx context.Context, endpoint string, params map[string]string, name string) (*types.Snapshot, string, error) {
	result, err := r.client.FetchJSON(ctx, endpoint, params)
	if err != nil {
		return nil, "", drifterrors.CaptureFailed(endpoint, err)
	}

	snapshot := &types.Snapshot{
		Metadata: types.SnapshotMetadata{
			Endpoint:       endpoint,
			Params:         params,
			Timestamp:      time.Now().UTC(),
			ResponseStatus: result.Status,
			ResponseTime:   result.ResponseTime.Seconds(),
		},
		Data: result.Data,
	}

	path, err := r.store.SaveSnapshot(name, snapshot)
	if err != nil {
		return nil, "", drifterrors.CaptureFailed(endpoint, err)
	}

	r.log.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"path":     path,
	}).Info("baseline captured")

	return snapshot, path, nil
}

// Run executes one regression test. It never returns an error: failures
// while preparing inputs (loading the snapshot, fetching live data) surface
// inside the returned report as a single execution_error outcome, so a batch
// can keep going.
func (r *Runner) Run(ctx context.Context, snapshotRef, endpoint string, params map[string]string, testName string) *types.RegressionReport {
	start := time.Now()

	expected, actual, err := r.prepareInputs(ctx, snapshotRef, endpoint, params)
	if err != nil {
		r.log.WithField("test", testName).Error("regression run could not prepare inputs", err)
		return r.failureReport(testName, err, start)
	}

	outcomes := differ.NewStructuralDiffer(r.options).Compare(expected.Data, actual.Data)
	report := types.NewRegressionReport(testName, outcomes, time.Since(start))

	r.log.WithFields(map[string]interface{}{
		"test":    testName,
		"total":   report.Summary.TotalComparisons,
		"failed":  report.Summary.FailedComparisons,
		"success": report.Summary.Success,
	}).Info("regression run finished")

	return report
}

// prepareInputs resolves the expected and actual payloads. When the caller
// overrides params the snapshot load and the live fetch are independent and
// run in parallel; otherwise the fetch reuses the capture-time params and
// must wait for the load.
func (r *Runner) prepareInputs(ctx context.Context, snapshotRef, endpoint string, params map[string]string) (*types.Snapshot, *fetcher.Result, error) {
	if params == nil {
		snapshot, err := r.store.LoadSnapshot(snapshotRef)
		if err != nil {
			return nil, nil, err
		}
		if endpoint == "" {
			endpoint = snapshot.Metadata.Endpoint
		}
		result, err := r.client.FetchJSON(ctx, endpoint, snapshot.Metadata.Params)
		if err != nil {
			return nil, nil, err
		}
		return snapshot, result, nil
	}

	var (
		snapshot *types.Snapshot
		result   *fetcher.Result
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = r.store.LoadSnapshot(snapshotRef)
		return err
	})
	g.Go(func() error {
		var err error
		result, err = r.client.FetchJSON(ctx, endpoint, params)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return snapshot, result, nil
}

// failureReport converts a preparation failure into a report with exactly
// one failing execution_error outcome.
func (r *Runner) failureReport(testName string, err error, start time.Time) *types.RegressionReport {
	outcome := types.ComparisonOutcome{
		FieldPath: "execution",
		Expected:  nil,
		Actual:    err.Error(),
		Match:     false,
		Kind:      types.DifferenceExecutionError,
	}
	return types.NewRegressionReport(testName, []types.ComparisonOutcome{outcome}, time.Since(start))
}
