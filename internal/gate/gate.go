// # internal/gate/gate.go

// Package gate wires the publish checks into a single pass: load the
// manifest, validate every declared file while entry points resolve
// concurrently, then scan the tree for files that leaked into the
// distribution undeclared.
package gate

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"distgate/internal/config"
	"distgate/internal/manifest"
	"distgate/internal/observability"
	"distgate/internal/parser"
	"distgate/internal/resolve"
	"distgate/internal/scan"
	"distgate/internal/typecheck"
	"distgate/internal/validate"
)

// Gate is one assembled validation pipeline. Safe to reuse across runs in
// watch mode; each run re-reads everything from disk.
type Gate struct {
	cfg       *config.Config
	validator *validate.Validator
	scanner   *scan.Scanner
}

// Result summarizes one run for reporting, history, and metrics.
type Result struct {
	RunID         string
	Start         time.Time
	Duration      time.Duration
	DeclaredCount int
	ActualCount   int
	Failure       *Failure
}

func (r Result) Passed() bool {
	return r.Failure == nil
}

func New(cfg *config.Config) (*Gate, error) {
	tsc, err := typecheck.LoadTSConfig(cfg.Build.RootDir)
	if err != nil {
		return nil, err
	}

	loader := parser.NewGrammarLoader()
	decl := typecheck.NewDeclarationChecker(loader, tsc)

	scanner, err := scan.New(cfg.Scan.Ignore)
	if err != nil {
		return nil, err
	}

	return &Gate{
		cfg:       cfg,
		validator: validate.New(cfg.Build, loader, decl),
		scanner:   scanner,
	}, nil
}

// Run executes the full pass and returns its Result. A failure never
// escapes as a plain error; it is typed, and only the caller decides how
// the process ends.
func (g *Gate) Run() (res Result) {
	res = Result{
		RunID: uuid.NewString(),
		Start: time.Now(),
	}
	defer func() {
		res.Duration = time.Since(res.Start)
		observability.RunDuration.Observe(res.Duration.Seconds())
		outcome := "pass"
		if res.Failure != nil {
			outcome = "fail"
		}
		observability.RunsTotal.WithLabelValues(outcome).Inc()
	}()

	m, err := manifest.Load(g.cfg.Build.PkgDir)
	if err != nil {
		res.Failure = newFailure(CodeManifest, "cannot load manifest", err)
		return res
	}

	expected := m.ExpectedFiles(g.cfg.Build.PkgDir)
	res.DeclaredCount = len(expected)

	// Per-file validation and entry-point resolution are independent;
	// the file loop itself stays sequential inside its task.
	var eg errgroup.Group
	eg.Go(func() error {
		if err := g.validator.ValidateAll(expected); err != nil {
			return newFailure(CodeFileValidation, "declared file failed validation", err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := resolve.EntryPoints(g.cfg.Build.PkgDir, m.EntryPoints()); err != nil {
			return newFailure(CodeEntryResolution, "entry point does not resolve", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		res.Failure = asFailure(err)
		return res
	}

	actual, err := g.scanner.ListFiles(g.cfg.Build.PkgDir)
	if err != nil {
		res.Failure = newFailure(CodeStructural, "tree scan failed", err)
		return res
	}
	res.ActualCount = len(actual)

	extras := scan.Unexpected(actual, expected)
	observability.UnexpectedFiles.Set(float64(len(extras)))
	if len(extras) > 0 {
		res.Failure = &Failure{
			Code:    CodeUnexpectedFiles,
			Message: "undeclared files present in package directory",
			Paths:   extras,
		}
		return res
	}

	return res
}

func asFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return newFailure(CodeStructural, "validation failed", err)
}
