// # internal/watcher/watcher_test.go
package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()

	changes := make(chan []string, 4)
	w, err := NewWatcher(100*time.Millisecond, nil, func(paths []string) {
		changes <- paths
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	for _, name := range []string{"a.cjs", "b.cjs", "c.map"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case paths := <-changes:
		if len(paths) == 0 {
			t.Error("Expected changed paths in the batch")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for debounced callback")
	}

	// The burst should have been delivered as one batch, not three.
	select {
	case extra := <-changes:
		t.Errorf("Expected a single coalesced batch, got extra %v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoresPatterns(t *testing.T) {
	dir := t.TempDir()

	changes := make(chan []string, 4)
	w, err := NewWatcher(50*time.Millisecond, []string{"*.log"}, func(paths []string) {
		changes <- paths
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "noise.log"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changes:
		t.Errorf("Ignored file should not trigger callback: %v", paths)
	case <-time.After(500 * time.Millisecond):
	}
}
