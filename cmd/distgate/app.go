// # cmd/distgate/app.go
package main

import (
	"log/slog"
	"os"
	"sync"

	"distgate/internal/config"
	"distgate/internal/gate"
	"distgate/internal/history"
	"distgate/internal/observability"
	"distgate/internal/report"
)

// App ties one assembled gate to its ambient services (history store,
// health state) across runs.
type App struct {
	cfg   *config.Config
	gate  *gate.Gate
	store *history.Store

	mu   sync.Mutex
	last gate.Result
}

func NewApp(cfg *config.Config) (*App, error) {
	g, err := gate.New(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, gate: g}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	return a, nil
}

// RunOnce executes a full validation pass, reports it, and records it.
func (a *App) RunOnce() gate.Result {
	res := a.gate.Run()

	a.mu.Lock()
	a.last = res
	a.mu.Unlock()

	if res.Passed() {
		report.Success(os.Stdout, res)
	} else {
		report.Failure(os.Stderr, res.Failure)
	}

	a.recordRun(res)
	return res
}

func (a *App) recordRun(res gate.Result) {
	if a.store == nil {
		return
	}

	run := history.Run{
		ID:            res.RunID,
		PkgDir:        a.cfg.Build.PkgDir,
		StartedAt:     res.Start,
		Duration:      res.Duration,
		DeclaredCount: res.DeclaredCount,
		ActualCount:   res.ActualCount,
		Outcome:       "pass",
	}
	if res.Failure != nil {
		run.Outcome = "fail"
		run.FailureCode = string(res.Failure.Code)
		run.Detail = res.Failure.Error()
	}

	if err := a.store.SaveRun(run); err != nil {
		slog.Warn("failed to record run history", "run", res.RunID, "error", err)
	}
}

// Health summarizes the most recent run for the /health endpoint.
func (a *App) Health() observability.Health {
	a.mu.Lock()
	defer a.mu.Unlock()

	status := "passing"
	if a.last.RunID == "" || a.last.Failure != nil {
		status = "failing"
	}
	return observability.Health{Status: status, LastRun: a.last.Start}
}

func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
}
