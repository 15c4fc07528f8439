// # internal/resolve/resolver_test.go
package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEntryPointsAllResolve(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"index.cjs", "index.mjs", "index.d.ts"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	err := EntryPoints(dir, map[string]string{
		"main":                 "index.cjs",
		"module":               "index.mjs",
		"types":                "index.d.ts",
		`exports["."].import`:  "./index.mjs",
		`exports["."].require`: "./index.cjs",
		`exports["./package"]`: "./index.cjs",
	})
	if err != nil {
		t.Errorf("Expected all entry points to resolve: %v", err)
	}
}

func TestEntryPointsMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sub.cjs"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := EntryPoints(dir, map[string]string{
		`exports["./sub"].require`: "./sub.cjs",
		`exports["./sub"].import`:  "./sub.mjs",
	})
	if err == nil {
		t.Fatal("Expected failure for missing ./sub.mjs")
	}
	if !strings.Contains(err.Error(), "sub.mjs") {
		t.Errorf("Error should name the missing path: %v", err)
	}
	if !strings.Contains(err.Error(), `exports["./sub"].import`) {
		t.Errorf("Error should name the manifest location: %v", err)
	}
}

func TestEntryPointsDirectoryRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "lib"), 0755); err != nil {
		t.Fatal(err)
	}

	err := EntryPoints(dir, map[string]string{"main": "lib"})
	if err == nil || !strings.Contains(err.Error(), "not a regular file") {
		t.Errorf("Directory entry point should be rejected, got %v", err)
	}
}

func TestEntryPointsEmpty(t *testing.T) {
	if err := EntryPoints(t.TempDir(), nil); err != nil {
		t.Errorf("No entry points should pass trivially: %v", err)
	}
}
