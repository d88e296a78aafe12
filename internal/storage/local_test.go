package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	drifterrors "github.com/yairfalse/driftwatch/internal/errors"
	"github.com/yairfalse/driftwatch/pkg/types"
)

func testSnapshot(endpoint string, capturedAt time.Time) *types.Snapshot {
	return &types.Snapshot{
		Metadata: types.SnapshotMetadata{
			Endpoint:       endpoint,
			Params:         map[string]string{"period": "7d"},
			Timestamp:      capturedAt,
			ResponseStatus: 200,
			ResponseTime:   0.123,
		},
		Data: map[string]interface{}{
			"data": map[string]interface{}{
				"novos":     float64(10),
				"pendentes": float64(5),
			},
		},
	}
}

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewLocalStore(Config{BaseDir: tmpDir})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	for _, dir := range []string{store.SnapshotDir(), store.ReportDir()} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory %s was not created", dir)
		}
	}
}

func TestLocalStore_SaveLoadSnapshot(t *testing.T) {
	store := newTestStore(t)
	snapshot := testSnapshot("/api/dashboard/stats", time.Now().UTC().Truncate(time.Second))

	path, err := store.SaveSnapshot("dashboard-stats", snapshot)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasSuffix(path, "dashboard-stats.json") {
		t.Errorf("unexpected snapshot path: %s", path)
	}

	loaded, err := store.LoadSnapshot("dashboard-stats")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Metadata.Endpoint != "/api/dashboard/stats" {
		t.Errorf("endpoint = %q", loaded.Metadata.Endpoint)
	}

	data := loaded.Data.(map[string]interface{})["data"].(map[string]interface{})
	if data["novos"] != float64(10) {
		t.Errorf("payload round-trip lost data: %v", data)
	}

	// Loading by direct path also works.
	byPath, err := store.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load by path failed: %v", err)
	}
	if byPath.Metadata.Endpoint != loaded.Metadata.Endpoint {
		t.Error("load by path returned a different snapshot")
	}
}

func TestLocalStore_SaveSnapshot_AutoName(t *testing.T) {
	store := newTestStore(t)
	capturedAt := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	path, err := store.SaveSnapshot("", testSnapshot("/api/dashboard/stats", capturedAt))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	base := filepath.Base(path)
	if !strings.Contains(base, "api-dashboard-stats") || !strings.Contains(base, "2025-06-01") {
		t.Errorf("auto-generated name should derive from endpoint and time, got %s", base)
	}
}

func TestLocalStore_LoadSnapshot_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadSnapshot("does-not-exist")
	if err == nil {
		t.Fatal("expected error for missing snapshot")
	}
	if !drifterrors.IsType(err, drifterrors.ErrorTypeSnapshotNotFound) {
		t.Errorf("expected SnapshotNotFound, got: %v", err)
	}
}

func TestLocalStore_LoadSnapshot_Corrupt(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.SnapshotDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.LoadSnapshot("broken")
	if err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
	if !drifterrors.IsType(err, drifterrors.ErrorTypeSnapshotCorrupt) {
		t.Errorf("expected SnapshotCorrupt, got: %v", err)
	}
}

func TestLocalStore_LatestSnapshot(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"stats-old", "stats-mid", "stats-new"} {
		snapshot := testSnapshot("/api/stats", base.Add(time.Duration(i)*time.Hour))
		if _, err := store.SaveSnapshot(name, snapshot); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
	}

	latest, err := store.LatestSnapshot("stats-*")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if !latest.Metadata.Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("expected newest snapshot, got %v", latest.Metadata.Timestamp)
	}

	// Substring patterns work too.
	if _, err := store.LatestSnapshot("mid"); err != nil {
		t.Errorf("substring pattern failed: %v", err)
	}

	_, err = store.LatestSnapshot("no-such-*")
	if !drifterrors.IsType(err, drifterrors.ErrorTypeNoSnapshot) {
		t.Errorf("expected NoSnapshot error, got: %v", err)
	}

	// Glob refs resolve through LoadSnapshot as well.
	viaLoad, err := store.LoadSnapshot("stats-*")
	if err != nil {
		t.Fatalf("glob load failed: %v", err)
	}
	if !viaLoad.Metadata.Timestamp.Equal(latest.Metadata.Timestamp) {
		t.Errorf("glob load returned %v, want %v", viaLoad.Metadata.Timestamp, latest.Metadata.Timestamp)
	}
}

func TestLocalStore_SaveReport_WritesLatestPointer(t *testing.T) {
	store := newTestStore(t)

	outcomes := []types.ComparisonOutcome{
		{FieldPath: "data.pendentes", Expected: float64(5), Actual: float64(6), Match: false, Kind: types.DifferenceNumeric, ToleranceApplied: true},
	}
	report := types.NewRegressionReport("dashboard-stats", outcomes, 100*time.Millisecond)

	historyPath, err := store.SaveReport(report)
	if err != nil {
		t.Fatalf("save report failed: %v", err)
	}
	if _, err := os.Stat(historyPath); err != nil {
		t.Errorf("history file missing: %v", err)
	}

	latest, err := store.LoadLatestReport("dashboard-stats")
	if err != nil {
		t.Fatalf("load latest report failed: %v", err)
	}
	if latest.TestName != "dashboard-stats" {
		t.Errorf("test name = %q", latest.TestName)
	}
	if latest.Summary.FailedComparisons != 1 {
		t.Errorf("failed comparisons = %d", latest.Summary.FailedComparisons)
	}
	if latest.Differences[0].Kind != types.DifferenceNumeric {
		t.Errorf("difference kind = %s", latest.Differences[0].Kind)
	}
}

func TestLocalStore_LoadLatestReport_Missing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.LoadLatestReport("never-ran"); err == nil {
		t.Error("expected error for missing latest report")
	}
}

func TestLocalStore_SnapshotCache(t *testing.T) {
	store, err := NewLocalStore(Config{BaseDir: t.TempDir(), CacheTTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	snapshot := testSnapshot("/api/stats", time.Now())
	path, err := store.SaveSnapshot("cached", snapshot)
	if err != nil {
		t.Fatal(err)
	}

	first, err := store.LoadSnapshot("cached")
	if err != nil {
		t.Fatal(err)
	}

	// Remove the backing file; a cached load must still succeed.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	second, err := store.LoadSnapshot("cached")
	if err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if second != first {
		t.Error("expected cached snapshot instance")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/api/dashboard/stats", "api-dashboard-stats"},
		{"name with spaces", "name-with-spaces"},
		{"a?b=c&d", "a-b-c-d"},
	}

	for _, tt := range tests {
		if got := sanitizeName(tt.input); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
