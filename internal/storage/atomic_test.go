package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestAtomicWriter_WriteFile(t *testing.T) {
	writer := NewAtomicWriter()
	path := filepath.Join(t.TempDir(), "nested", "dir", "file.json")

	data := []byte(`{"ok":true}`)
	if err := writer.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	read, err := writer.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(read) != string(data) {
		t.Errorf("read back %q, want %q", read, data)
	}
}

func TestAtomicWriter_LeavesNoTempFiles(t *testing.T) {
	writer := NewAtomicWriter()
	dir := t.TempDir()
	path := filepath.Join(dir, "file.json")

	if err := writer.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "file.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestAtomicWriter_ConcurrentSameFile(t *testing.T) {
	// Hammer the same "latest" pointer from many goroutines; every read must
	// observe one complete JSON document, never a torn write.
	writer := NewAtomicWriter()
	path := filepath.Join(t.TempDir(), "latest-test.json")

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			payload := fmt.Sprintf(`{"writer":%d,"padding":%q}`, n, strings.Repeat("x", 256))
			if err := writer.WriteFile(path, []byte(payload), 0o644); err != nil {
				t.Errorf("writer %d failed: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	data, err := writer.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("final file is not complete JSON: %v", err)
	}
	if _, ok := decoded["writer"]; !ok {
		t.Error("final file lost its payload")
	}
}

func TestAtomicWriter_Overwrite(t *testing.T) {
	writer := NewAtomicWriter()
	path := filepath.Join(t.TempDir(), "file.json")

	if err := writer.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := writer.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("got %q, want last write to win", data)
	}
}
