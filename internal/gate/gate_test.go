// # internal/gate/gate_test.go
package gate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"distgate/internal/config"
)

// buildFixture lays out a minimal valid distribution: a project root with
// tsconfig.json and a dist directory whose manifest declares exactly what
// is on disk.
func buildFixture(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	pkg := filepath.Join(root, "dist")
	if err := os.MkdirAll(pkg, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(root, "tsconfig.json"): `{"compilerOptions": {}}`,
		filepath.Join(pkg, "package.json"): `{
  "files": ["package.json", "index.d.ts", "data.json", "README.md"],
  "types": "index.d.ts"
}`,
		filepath.Join(pkg, "index.d.ts"): "export declare function main(): void;\n",
		filepath.Join(pkg, "data.json"):  `{"ok": true}`,
		filepath.Join(pkg, "README.md"):  "# fixture\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Build.PkgDir = pkg
	cfg.Build.RootDir = root
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newGate(t *testing.T, cfg *config.Config) *Gate {
	t.Helper()
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func TestRunPasses(t *testing.T) {
	cfg := buildFixture(t)
	g := newGate(t, cfg)

	res := g.Run()
	if !res.Passed() {
		t.Fatalf("Expected pass, got %v", res.Failure)
	}
	if res.DeclaredCount != 4 || res.ActualCount != 4 {
		t.Errorf("Unexpected counts: declared=%d actual=%d", res.DeclaredCount, res.ActualCount)
	}
	if res.RunID == "" {
		t.Error("Expected a run id")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := buildFixture(t)
	g := newGate(t, cfg)

	for i := 0; i < 2; i++ {
		if res := g.Run(); !res.Passed() {
			t.Fatalf("Run %d failed: %v", i, res.Failure)
		}
	}
}

func TestRunManifestMissing(t *testing.T) {
	cfg := buildFixture(t)
	if err := os.Remove(filepath.Join(cfg.Build.PkgDir, "package.json")); err != nil {
		t.Fatal(err)
	}
	g := newGate(t, cfg)

	res := g.Run()
	if res.Passed() || res.Failure.Code != CodeManifest {
		t.Errorf("Expected MANIFEST_ERROR, got %v", res.Failure)
	}
}

func TestRunMissingDeclaredFile(t *testing.T) {
	cfg := buildFixture(t)
	if err := os.Remove(filepath.Join(cfg.Build.PkgDir, "data.json")); err != nil {
		t.Fatal(err)
	}
	g := newGate(t, cfg)

	res := g.Run()
	if res.Passed() || res.Failure.Code != CodeFileValidation {
		t.Fatalf("Expected FILE_VALIDATION, got %v", res.Failure)
	}
	if !strings.Contains(res.Failure.Error(), "data.json") {
		t.Errorf("Failure should name the missing file: %v", res.Failure)
	}
}

func TestRunInvalidDeclaredJSON(t *testing.T) {
	cfg := buildFixture(t)
	if err := os.WriteFile(filepath.Join(cfg.Build.PkgDir, "data.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	g := newGate(t, cfg)

	res := g.Run()
	if res.Passed() || res.Failure.Code != CodeFileValidation {
		t.Errorf("Expected FILE_VALIDATION for malformed JSON, got %v", res.Failure)
	}
}

func TestRunEntryPointMissing(t *testing.T) {
	cfg := buildFixture(t)
	manifestPath := filepath.Join(cfg.Build.PkgDir, "package.json")
	content := `{
  "files": ["package.json", "index.d.ts", "data.json", "README.md"],
  "types": "index.d.ts",
  "exports": {"./sub": {"import": "./sub.mjs", "require": "./index.d.ts"}}
}`
	if err := os.WriteFile(manifestPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	g := newGate(t, cfg)

	res := g.Run()
	if res.Passed() || res.Failure.Code != CodeEntryResolution {
		t.Fatalf("Expected ENTRY_RESOLUTION, got %v", res.Failure)
	}
	if !strings.Contains(res.Failure.Error(), "sub.mjs") {
		t.Errorf("Failure should name the missing entry target: %v", res.Failure)
	}
}

func TestRunUnexpectedFilesBatched(t *testing.T) {
	cfg := buildFixture(t)
	for _, name := range []string{"stray.tmp", "leftover.txt"} {
		if err := os.WriteFile(filepath.Join(cfg.Build.PkgDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	g := newGate(t, cfg)

	res := g.Run()
	if res.Passed() || res.Failure.Code != CodeUnexpectedFiles {
		t.Fatalf("Expected UNEXPECTED_FILES, got %v", res.Failure)
	}
	if len(res.Failure.Paths) != 2 {
		t.Errorf("Expected both stray files in one batch, got %v", res.Failure.Paths)
	}
}

func TestRunScanIgnores(t *testing.T) {
	cfg := buildFixture(t)
	cfg.Scan.Ignore = []string{".DS_Store"}
	if err := os.WriteFile(filepath.Join(cfg.Build.PkgDir, ".DS_Store"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	g := newGate(t, cfg)

	if res := g.Run(); !res.Passed() {
		t.Errorf("Ignored file should not fail the scan: %v", res.Failure)
	}
}

func TestNewRequiresCompilerConfig(t *testing.T) {
	cfg := buildFixture(t)
	if err := os.Remove(filepath.Join(cfg.Build.RootDir, "tsconfig.json")); err != nil {
		t.Fatal(err)
	}
	if _, err := New(cfg); err == nil {
		t.Error("Expected error when tsconfig.json is missing")
	}
}
