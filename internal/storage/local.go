package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yairfalse/driftwatch/internal/cache"
	drifterrors "github.com/yairfalse/driftwatch/internal/errors"
	"github.com/yairfalse/driftwatch/pkg/types"
)

// LocalStore implements the Store interface on the local filesystem.
// Snapshot files are append-mostly; the per-test "latest" report pointer is
// the only artifact overwritten in place, always through the atomic writer.
type LocalStore struct {
	baseDir   string
	snapshots string
	reports   string
	writer    *AtomicWriter
	readCache cache.Cache
}

// NewLocalStore creates a local store rooted at config.BaseDir, defaulting
// to ~/.driftwatch.
func NewLocalStore(config Config) (*LocalStore, error) {
	if config.BaseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		config.BaseDir = filepath.Join(homeDir, ".driftwatch")
	}

	store := &LocalStore{
		baseDir:   config.BaseDir,
		snapshots: filepath.Join(config.BaseDir, "snapshots"),
		reports:   filepath.Join(config.BaseDir, "reports"),
		writer:    NewAtomicWriter(),
	}

	if config.CacheTTL > 0 {
		store.readCache = cache.NewMemory(cache.Config{
			MaxEntries: 64,
			DefaultTTL: config.CacheTTL,
		})
	}

	for _, dir := range []string{store.baseDir, store.snapshots, store.reports} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return store, nil
}

// SaveSnapshot writes a snapshot under the given name, deriving a name from
// the endpoint and capture time when none is supplied. Returns the file path.
func (s *LocalStore) SaveSnapshot(name string, snapshot *types.Snapshot) (string, error) {
	if err := snapshot.Validate(); err != nil {
		return "", fmt.Errorf("invalid snapshot: %w", err)
	}

	if name == "" {
		name = fmt.Sprintf("%s-%s",
			sanitizeName(snapshot.Metadata.Endpoint),
			snapshot.Metadata.Timestamp.Format("2006-01-02T15-04-05"))
	}

	path := filepath.Join(s.snapshots, sanitizeName(name)+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.writer.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	if s.readCache != nil {
		s.readCache.Delete(path)
	}

	return path, nil
}

// LoadSnapshot loads a snapshot by stored name or by direct file path. A ref
// containing glob metacharacters resolves to the newest matching snapshot.
func (s *LocalStore) LoadSnapshot(ref string) (*types.Snapshot, error) {
	if strings.ContainsAny(ref, "*?[") {
		return s.LatestSnapshot(ref)
	}

	path := s.resolveSnapshotPath(ref)

	if s.readCache != nil {
		if cached, ok := s.readCache.Get(path); ok {
			return cached.(*types.Snapshot), nil
		}
	}

	data, err := s.writer.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, drifterrors.SnapshotNotFound(ref)
		}
		return nil, drifterrors.New(drifterrors.ErrorTypeStorage, "failed to read snapshot file").WithCause(err)
	}

	var snapshot types.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, drifterrors.SnapshotCorrupt(ref, err)
	}

	if s.readCache != nil {
		s.readCache.Set(path, &snapshot, 0)
	}

	return &snapshot, nil
}

// LatestSnapshot returns the most recently captured snapshot whose name
// matches pattern. Glob metacharacters are honored; a plain pattern matches
// as a substring.
func (s *LocalStore) LatestSnapshot(pattern string) (*types.Snapshot, error) {
	infos, err := s.ListSnapshots()
	if err != nil {
		return nil, err
	}

	for _, info := range infos {
		if matchesPattern(info.Name, pattern) {
			// infos are sorted newest first
			return s.LoadSnapshot(info.FilePath)
		}
	}

	return nil, drifterrors.NoSnapshot(pattern)
}

// ListSnapshots returns metadata for all stored snapshots, newest first
func (s *LocalStore) ListSnapshots() ([]SnapshotInfo, error) {
	files, err := os.ReadDir(s.snapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	var infos []SnapshotInfo
	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.snapshots, file.Name())
		stat, err := file.Info()
		if err != nil {
			continue
		}

		var snapshot types.Snapshot
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(data, &snapshot); err != nil {
			continue
		}

		infos = append(infos, SnapshotInfo{
			Name:       strings.TrimSuffix(file.Name(), ".json"),
			Endpoint:   snapshot.Metadata.Endpoint,
			CapturedAt: snapshot.Metadata.Timestamp,
			FilePath:   path,
			FileSize:   stat.Size(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CapturedAt.After(infos[j].CapturedAt)
	})

	return infos, nil
}

// SaveReport writes a timestamped report file and overwrites the per-test
// "latest" pointer. Returns the history file path.
func (s *LocalStore) SaveReport(report *types.RegressionReport) (string, error) {
	if err := report.Validate(); err != nil {
		return "", fmt.Errorf("invalid report: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	name := sanitizeName(report.TestName)
	historyPath := filepath.Join(s.reports,
		fmt.Sprintf("%s-%s.json", name, report.Timestamp.Format("2006-01-02T15-04-05")))

	if err := s.writer.WriteFile(historyPath, data, 0o644); err != nil {
		return "", err
	}

	latestPath := filepath.Join(s.reports, "latest-"+name+".json")
	if err := s.writer.WriteFile(latestPath, data, 0o644); err != nil {
		return "", err
	}

	return historyPath, nil
}

// LoadLatestReport loads the most recent report for a test name via its
// "latest" pointer.
func (s *LocalStore) LoadLatestReport(testName string) (*types.RegressionReport, error) {
	path := filepath.Join(s.reports, "latest-"+sanitizeName(testName)+".json")

	data, err := s.writer.ReadFile(path)
	if err != nil {
		return nil, drifterrors.New(drifterrors.ErrorTypeStorage,
			fmt.Sprintf("no report found for test %q", testName)).WithCause(err)
	}

	var report types.RegressionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, drifterrors.New(drifterrors.ErrorTypeStorage,
			fmt.Sprintf("stored report cannot be decoded for test %q", testName)).WithCause(err)
	}

	return &report, nil
}

// resolveSnapshotPath maps a name-or-path reference to a concrete file path
func (s *LocalStore) resolveSnapshotPath(ref string) string {
	if strings.HasSuffix(ref, ".json") {
		if _, err := os.Stat(ref); err == nil {
			return ref
		}
	}
	return filepath.Join(s.snapshots, sanitizeName(ref)+".json")
}

// sanitizeName makes a snapshot or test name safe for use as a filename
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"?", "-",
		"&", "-",
		"=", "-",
		" ", "-",
	)
	return strings.Trim(replacer.Replace(name), "-")
}

// matchesPattern matches a snapshot name against a glob or substring pattern
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}
	return strings.Contains(name, pattern)
}

var _ Store = (*LocalStore)(nil)

// SnapshotDir returns the directory holding snapshot files
func (s *LocalStore) SnapshotDir() string {
	return s.snapshots
}

// ReportDir returns the directory holding report files
func (s *LocalStore) ReportDir() string {
	return s.reports
}

// DefaultCacheTTL is the snapshot read-cache lifetime used when callers do
// not override it.
const DefaultCacheTTL = 30 * time.Second
