// # internal/validate/validator.go

// Package validate checks every declared artifact of a package
// distribution for well-formedness. Each artifact kind carries its own
// proof: executables must load without throwing, declarations must pass
// the single-file check, data files must parse, everything else must not
// be accidentally empty.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"distgate/internal/config"
	"distgate/internal/observability"
	"distgate/internal/parser"
	"distgate/internal/typecheck"
)

// Kind is the artifact category an extension dispatches to.
type Kind string

const (
	KindCommonJS    Kind = "commonjs"
	KindESModule    Kind = "esmodule"
	KindDeclaration Kind = "declaration"
	KindJSON        Kind = "json"
	KindText        Kind = "text"
)

// kindByExt is the dispatch table from file extension to artifact kind.
// Source maps are JSON payloads under a different extension.
var kindByExt = map[string]Kind{
	".cjs":  KindCommonJS,
	".mjs":  KindESModule,
	".ts":   KindDeclaration,
	".json": KindJSON,
	".map":  KindJSON,
}

// KindFor returns the artifact kind a path dispatches to.
func KindFor(path string) Kind {
	if kind, ok := kindByExt[filepath.Ext(path)]; ok {
		return kind
	}
	return KindText
}

// Validator runs the per-file checks. Validation is sequential: executing
// artifacts has observable side effects, and diagnostics must attribute to
// exactly one path at a time.
type Validator struct {
	build  config.Build
	syntax *parser.Checker
	decl   *typecheck.DeclarationChecker
}

func New(build config.Build, loader *parser.GrammarLoader, decl *typecheck.DeclarationChecker) *Validator {
	return &Validator{
		build:  build,
		syntax: parser.NewChecker(loader),
		decl:   decl,
	}
}

// ValidateAll checks every declared path in order and returns the first
// failure, wrapped with the offending path.
func (v *Validator) ValidateAll(paths []string) error {
	for _, path := range paths {
		if err := v.ValidateFile(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		slog.Debug("artifact ok", "path", path, "kind", KindFor(path))
	}
	return nil
}

// ValidateFile dispatches one declared file to its kind-specific check. A
// declared file that is missing from disk fails here, before the tree scan
// ever runs.
func (v *Validator) ValidateFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	kind := KindFor(path)
	observability.ArtifactsValidated.WithLabelValues(string(kind)).Inc()

	switch kind {
	case KindCommonJS:
		return v.checkExecutable(path, content)
	case KindESModule:
		if v.build.ESMNode {
			return v.checkExecutable(path, content)
		}
		// Without node ESM execution the module file is held to the
		// declaration check instead.
		return v.checkDeclaration(path, content)
	case KindDeclaration:
		return v.checkDeclaration(path, content)
	case KindJSON:
		return checkJSON(content)
	default:
		return checkNonEmpty(content)
	}
}

// checkExecutable proves the artifact loads in its target runtime: a
// syntax parse first (for positioned diagnostics), then a node subprocess
// so top-level throws and missing dependencies surface.
func (v *Validator) checkExecutable(path string, content []byte) error {
	diags, err := v.syntax.Check(path, content)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		return errors.New(parser.FormatDiagnostics(diags))
	}

	cmd := exec.Command(v.build.NodeBinary, path)
	cmd.Dir = v.build.PkgDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
			return fmt.Errorf("load failed: %w\n%s", err, trimmed)
		}
		return fmt.Errorf("load failed: %w", err)
	}
	return nil
}

func (v *Validator) checkDeclaration(path string, content []byte) error {
	diags, err := v.decl.Check(path, content)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		return errors.New(parser.FormatDiagnostics(diags))
	}
	return nil
}

func checkJSON(content []byte) error {
	if err := json.Unmarshal(content, new(any)); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func checkNonEmpty(content []byte) error {
	if len(strings.TrimSpace(string(content))) == 0 {
		return errors.New("file is empty")
	}
	return nil
}
