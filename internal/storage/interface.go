package storage

import (
	"time"

	"github.com/yairfalse/driftwatch/pkg/types"
)

// Store persists and retrieves snapshots and regression reports
type Store interface {
	SaveSnapshot(name string, snapshot *types.Snapshot) (string, error)
	LoadSnapshot(ref string) (*types.Snapshot, error)
	LatestSnapshot(pattern string) (*types.Snapshot, error)
	ListSnapshots() ([]SnapshotInfo, error)

	SaveReport(report *types.RegressionReport) (string, error)
	LoadLatestReport(testName string) (*types.RegressionReport, error)
}

// Config contains storage configuration
type Config struct {
	BaseDir  string
	CacheTTL time.Duration
}

// SnapshotInfo describes a stored snapshot without loading its payload
type SnapshotInfo struct {
	Name       string
	Endpoint   string
	CapturedAt time.Time
	FilePath   string
	FileSize   int64
}
