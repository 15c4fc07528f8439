// # internal/validate/validator_test.go
package validate

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"distgate/internal/config"
	"distgate/internal/parser"
	"distgate/internal/typecheck"
)

func newValidator(t *testing.T, root string, esmNode bool) *Validator {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "tsconfig.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	tsc, err := typecheck.LoadTSConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	loader := parser.NewGrammarLoader()
	build := config.Build{PkgDir: root, RootDir: root, ESMNode: esmNode, NodeBinary: "node"}
	return New(build, loader, typecheck.NewDeclarationChecker(loader, tsc))
}

func write(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not available")
	}
}

func TestKindFor(t *testing.T) {
	cases := map[string]Kind{
		"index.cjs":     KindCommonJS,
		"index.mjs":     KindESModule,
		"index.d.ts":    KindDeclaration,
		"data.json":     KindJSON,
		"index.cjs.map": KindJSON,
		"notes.xyz":     KindText,
		"LICENSE":       KindText,
	}
	for path, want := range cases {
		if got := KindFor(path); got != want {
			t.Errorf("KindFor(%s): expected %s, got %s", path, want, got)
		}
	}
}

func TestValidateJSON(t *testing.T) {
	root := t.TempDir()
	v := newValidator(t, root, false)

	good := write(t, filepath.Join(root, "data.json"), `{}`)
	if err := v.ValidateFile(good); err != nil {
		t.Errorf("Valid JSON failed: %v", err)
	}

	bad := write(t, filepath.Join(root, "bad.json"), `{`)
	if err := v.ValidateFile(bad); err == nil {
		t.Error("Malformed JSON should fail")
	}
}

func TestValidateSourceMap(t *testing.T) {
	root := t.TempDir()
	v := newValidator(t, root, false)

	good := write(t, filepath.Join(root, "index.cjs.map"), `{"version": 3, "mappings": ""}`)
	if err := v.ValidateFile(good); err != nil {
		t.Errorf("Valid source map failed: %v", err)
	}

	bad := write(t, filepath.Join(root, "bad.map"), `not json`)
	if err := v.ValidateFile(bad); err == nil {
		t.Error("Malformed source map should fail")
	}
}

func TestValidateTextEmptiness(t *testing.T) {
	root := t.TempDir()
	v := newValidator(t, root, false)

	empty := write(t, filepath.Join(root, "notes.xyz"), "   ")
	err := v.ValidateFile(empty)
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("Whitespace-only file should fail as empty, got %v", err)
	}

	ok := write(t, filepath.Join(root, "notes2.xyz"), "ok")
	if err := v.ValidateFile(ok); err != nil {
		t.Errorf("Non-empty text file failed: %v", err)
	}
}

func TestValidateMissingDeclaredFile(t *testing.T) {
	root := t.TempDir()
	v := newValidator(t, root, false)

	err := v.ValidateAll([]string{filepath.Join(root, "absent.cjs")})
	if err == nil {
		t.Fatal("Missing declared file should fail")
	}
	if !strings.Contains(err.Error(), "absent.cjs") {
		t.Errorf("Error should name the path: %v", err)
	}
}

func TestValidateCommonJSSyntaxError(t *testing.T) {
	root := t.TempDir()
	v := newValidator(t, root, false)

	bad := write(t, filepath.Join(root, "broken.cjs"), "function broken( {\n")
	if err := v.ValidateFile(bad); err == nil {
		t.Error("Broken .cjs syntax should fail before execution")
	}
}

func TestValidateCommonJSExecution(t *testing.T) {
	requireNode(t)
	root := t.TempDir()
	v := newValidator(t, root, false)

	ok := write(t, filepath.Join(root, "ok.cjs"), "module.exports = 1;\n")
	if err := v.ValidateFile(ok); err != nil {
		t.Errorf("Clean .cjs failed: %v", err)
	}

	throws := write(t, filepath.Join(root, "throws.cjs"), "throw new Error('boom');\n")
	err := v.ValidateFile(throws)
	if err == nil {
		t.Fatal("Top-level throw should fail")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error should carry the runtime output: %v", err)
	}
}

func TestValidateESModuleExecuted(t *testing.T) {
	requireNode(t)
	root := t.TempDir()
	v := newValidator(t, root, true)

	ok := write(t, filepath.Join(root, "ok.mjs"), "export const x = 1;\n")
	if err := v.ValidateFile(ok); err != nil {
		t.Errorf("Clean .mjs failed: %v", err)
	}

	throws := write(t, filepath.Join(root, "throws.mjs"), "throw new Error('boom');\n")
	if err := v.ValidateFile(throws); err == nil {
		t.Error("Top-level throw in .mjs should fail when esm_node is on")
	}
}

func TestValidateESModuleFallsThroughToDeclarationCheck(t *testing.T) {
	root := t.TempDir()
	v := newValidator(t, root, false)

	// With esm_node off, a module importing a missing sibling fails the
	// declaration check without ever executing.
	bad := write(t, filepath.Join(root, "index.mjs"), "import './missing.mjs';\nthrow new Error('never runs');\n")
	err := v.ValidateFile(bad)
	if err == nil {
		t.Fatal("Unresolvable import should fail the declaration check")
	}
	if !strings.Contains(err.Error(), "missing.mjs") {
		t.Errorf("Error should name the missing specifier: %v", err)
	}
}
