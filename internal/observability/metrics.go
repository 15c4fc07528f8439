package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distgate_runs_total",
		Help: "Total number of validation runs, labeled by outcome.",
	}, []string{"outcome"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "distgate_run_seconds",
		Help:    "Wall time of a full validation run.",
		Buckets: prometheus.DefBuckets,
	})

	ArtifactsValidated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distgate_artifacts_validated_total",
		Help: "Total number of declared artifacts checked, labeled by kind.",
	}, []string{"kind"})

	UnexpectedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "distgate_unexpected_files",
		Help: "Undeclared files found in the package directory by the last scan.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "distgate_watcher_events_total",
		Help: "Total number of file system events received in watch mode.",
	})
)
