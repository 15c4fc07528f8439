// # cmd/distgate/main.go
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"distgate/internal/config"
	"distgate/internal/observability"
	"distgate/internal/watcher"
)

var (
	configPath  = flag.String("config", "./distgate.toml", "Path to config file")
	pkgDir      = flag.String("pkg-dir", "", "Absolute path to the package build output")
	rootDir     = flag.String("root-dir", "", "Project root holding the compiler configuration")
	esmNode     = flag.Bool("esm-node", false, "Execute .mjs entry files via node instead of the declaration check")
	nodeBinary  = flag.String("node", "", "Node executable used to load .cjs/.mjs artifacts")
	watch       = flag.Bool("watch", false, "Re-run validation when the package directory changes")
	metricsAddr = flag.String("metrics-addr", "", "Serve /metrics and /health on this address in watch mode")
	historyPath = flag.String("history", "", "Record each run into this sqlite database")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	version     = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("distgate v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./distgate.toml" {
			cfg, err = config.Load("./distgate.example.toml")
		}
		if err != nil {
			// Flags alone can drive a run; a missing config file only
			// matters when it was asked for explicitly.
			if flagWasSet("config") {
				slog.Error("failed to load config", "error", err)
				os.Exit(1)
			}
			cfg = config.Default()
		}
	}
	applyFlagOverrides(cfg)

	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid build configuration", "error", err)
		os.Exit(1)
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	res := app.RunOnce()

	if !*watch {
		// The one place the process decides its exit code.
		if !res.Passed() {
			app.Close()
			os.Exit(1)
		}
		return
	}

	if cfg.Metrics.Addr != "" {
		server := observability.NewServer(cfg.Metrics.Addr, app.Health)
		server.Start()
	}

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Scan.Ignore, func(paths []string) {
		slog.Info("package directory changed", "changes", len(paths))
		app.RunOnce()
	})
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	if err := w.Watch(cfg.Build.PkgDir); err != nil {
		slog.Error("failed to watch package directory", "error", err)
		os.Exit(1)
	}
	slog.Info("watching for changes", "pkg_dir", cfg.Build.PkgDir)

	// Block forever
	select {}
}

func applyFlagOverrides(cfg *config.Config) {
	if *pkgDir != "" {
		cfg.Build.PkgDir = *pkgDir
	}
	if *rootDir != "" {
		cfg.Build.RootDir = *rootDir
	}
	if flagWasSet("esm-node") {
		cfg.Build.ESMNode = *esmNode
	}
	if *nodeBinary != "" {
		cfg.Build.NodeBinary = *nodeBinary
	}
	if *historyPath != "" {
		cfg.History.Path = *historyPath
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
