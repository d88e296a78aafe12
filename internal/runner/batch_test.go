package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/driftwatch/internal/differ"
	"github.com/yairfalse/driftwatch/internal/fetcher"
	"github.com/yairfalse/driftwatch/internal/storage"
)

func TestRunBatch_AutoCapturesMissingBaselines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"novos":10}}`))
	}))
	defer server.Close()

	r, store := newTestRunner(t, server.URL)

	tests := []TestSpec{
		{Name: "stats-a", Endpoint: "/api/a"},
		{Name: "stats-b", Endpoint: "/api/b"},
	}

	results := r.RunBatch(context.Background(), tests, 2)
	require.Len(t, results, 2)

	for _, result := range results {
		assert.True(t, result.Captured, "first batch run should capture baselines")
		assert.True(t, result.Passed())
		assert.NoError(t, result.Err)
	}

	// Baselines now exist under the test names.
	for _, name := range []string{"stats-a", "stats-b"} {
		_, err := store.LoadSnapshot(name)
		assert.NoError(t, err)
	}

	// Second run compares instead of capturing.
	results = r.RunBatch(context.Background(), tests, 2)
	for _, result := range results {
		assert.False(t, result.Captured)
		require.NotNil(t, result.Report)
		assert.True(t, result.Report.Summary.Success)
	}
}

func TestRunBatch_IndependentFailures(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/broken" && !healthy.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data":{"novos":10}}`))
	}))
	defer server.Close()

	r, _ := newTestRunner(t, server.URL)
	ctx := context.Background()

	tests := []TestSpec{
		{Name: "good", Endpoint: "/api/good"},
		{Name: "broken", Endpoint: "/api/broken"},
	}

	// First pass captures both baselines.
	r.RunBatch(ctx, tests, 2)

	// Break one endpoint; the other test must still run and pass.
	healthy.Store(false)

	results := r.RunBatch(ctx, tests, 2)
	require.Len(t, results, 2)

	assert.True(t, results[0].Passed())
	assert.False(t, results[1].Passed())
	require.NotNil(t, results[1].Report)
	assert.Equal(t, 1, results[1].Report.Summary.FailedComparisons)
}

func TestRunBatch_ResultsKeepInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stagger responses so completion order differs from input order.
		if r.URL.Path == "/api/slow" {
			time.Sleep(50 * time.Millisecond)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	r, _ := newTestRunner(t, server.URL)

	tests := []TestSpec{
		{Name: "slow", Endpoint: "/api/slow"},
		{Name: "fast", Endpoint: "/api/fast"},
	}

	results := r.RunBatch(context.Background(), tests, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].Spec.Name)
	assert.Equal(t, "fast", results[1].Spec.Name)
}

func TestTestSpec_SnapshotRef(t *testing.T) {
	spec := TestSpec{Name: "stats"}
	assert.Equal(t, "stats", spec.SnapshotRef())

	spec.Snapshot = "custom-baseline"
	assert.Equal(t, "custom-baseline", spec.SnapshotRef())
}

func TestRunBatch_DefaultWorkerCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	store, err := storage.NewLocalStore(storage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	r := New(store, fetcher.New(server.URL, time.Second), differ.DefaultOptions(), nil)

	// workers <= 0 must not deadlock or panic.
	results := r.RunBatch(context.Background(), []TestSpec{{Name: "only", Endpoint: "/api"}}, 0)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())
}
