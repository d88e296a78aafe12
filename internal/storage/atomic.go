package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AtomicWriter serializes writes per file and makes each write
// all-or-nothing via write-to-temp-then-rename, so a concurrent reader never
// observes a partially written artifact. This matters for the "latest"
// pointer files, which are overwritten on every run.
type AtomicWriter struct {
	locks   map[string]*sync.RWMutex
	locksMu sync.Mutex
}

// NewAtomicWriter creates a new atomic writer
func NewAtomicWriter() *AtomicWriter {
	return &AtomicWriter{
		locks: make(map[string]*sync.RWMutex),
	}
}

// WriteFile writes data to a file atomically
func (w *AtomicWriter) WriteFile(filename string, data []byte, perm os.FileMode) error {
	fileLock := w.getFileLock(filename)
	fileLock.Lock()
	defer fileLock.Unlock()

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := filename + ".tmp." + tempSuffix()

	if err := os.WriteFile(tempFile, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := verifyIntegrity(tempFile, data); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("file integrity check failed: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ReadFile reads a file under the same per-file lock used for writes
func (w *AtomicWriter) ReadFile(filename string) ([]byte, error) {
	fileLock := w.getFileLock(filename)
	fileLock.RLock()
	defer fileLock.RUnlock()

	return os.ReadFile(filename)
}

// getFileLock gets or creates a lock for a specific file
func (w *AtomicWriter) getFileLock(filename string) *sync.RWMutex {
	w.locksMu.Lock()
	defer w.locksMu.Unlock()

	if lock, exists := w.locks[filename]; exists {
		return lock
	}

	lock := &sync.RWMutex{}
	w.locks[filename] = lock
	return lock
}

// verifyIntegrity checks that the temp file holds exactly the data we wrote
func verifyIntegrity(filename string, expected []byte) error {
	actual, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	expectedHash := sha256.Sum256(expected)
	actualHash := sha256.Sum256(actual)

	if expectedHash != actualHash {
		return fmt.Errorf("hash mismatch")
	}

	return nil
}

// tempSuffix generates a unique suffix for temporary files
func tempSuffix() string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return hex.EncodeToString(hash[:4])
}
