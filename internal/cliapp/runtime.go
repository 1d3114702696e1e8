package cliapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"stacklens/internal/catalog"
	"stacklens/internal/config"
	"stacklens/internal/counter"
	"stacklens/internal/detect"
	"stacklens/internal/history"
	"stacklens/internal/scan"
	"stacklens/internal/shared/observability"
	"stacklens/internal/watcher"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("stacklens v%s\n", versionString)
		return 0
	}

	// A .env next to the binary may carry STACKLENS_* overrides.
	_ = godotenv.Load()

	cleanupLogs := configureLogging(!opts.noUI, opts.verbose)
	defer cleanupLogs()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	applyFlagOverrides(&opts, cfg)

	ctx := context.Background()

	if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, versionString)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(shutdownCtx)
			}()
		}
	}

	if cfg.Observability.Enabled {
		server := observability.NewServer(cfg.Observability.Addr)
		if err := server.Start(ctx); err != nil {
			slog.Warn("observability server not started", "error", err)
		} else {
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = server.Stop(stopCtx)
			}()
		}
	}

	rt, err := newRuntime(cfg, opts)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return 1
	}
	defer rt.close()

	if opts.noUI {
		return rt.runPlain(ctx)
	}
	if err := runUI(ctx, rt); err != nil {
		slog.Error("failed to run UI", "error", err)
		return 1
	}
	return 0
}

// runtime wires the detection, discovery and counting pipeline for one
// invocation. It holds no per-scan state; scans may run repeatedly.
type runtime struct {
	cfg   *config.Config
	opts  cliOptions
	cat   *catalog.Catalog
	det   *detect.Detector
	scr   *scan.Scanner
	store *history.Store

	onProgress func(counter.Progress)
	onRescan   func()
}

func newRuntime(cfg *config.Config, opts cliOptions) (*runtime, error) {
	cat := catalog.Default()

	var det *detect.Detector
	if opts.watch {
		// Watch mode probes the same directories on every rescan.
		det = detect.NewCached(cat, 512)
	} else {
		det = detect.New(cat)
	}

	rt := &runtime{
		cfg:  cfg,
		opts: opts,
		cat:  cat,
		det:  det,
		scr: scan.New(det, scan.Options{
			IgnoreDirs: cfg.Ignore.Dirs,
		}),
	}

	if cfg.History.Enabled || opts.history {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		rt.store = store
	}

	return rt, nil
}

func (rt *runtime) close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
}

// discover finds project roots under the configured scan root.
func (rt *runtime) discover(ctx context.Context) ([]scan.Project, error) {
	ctx, span := observability.Tracer.Start(ctx, "runtime.discover")
	defer span.End()

	started := time.Now()
	projects, err := rt.scr.Scan(ctx, rt.cfg.ScanRoot, rt.cfg.MaxDepth)
	observability.ScanDuration.WithLabelValues("discover").Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	byFramework := make(map[string]int)
	for _, p := range projects {
		byFramework[p.FrameworkName()]++
	}
	for framework, n := range byFramework {
		observability.ProjectsDetected.WithLabelValues(framework).Set(float64(n))
	}

	return projects, nil
}

// selectedProject resolves --project into a Project, detecting its
// framework in place.
func (rt *runtime) selectedProject() (scan.Project, error) {
	abs, err := filepath.Abs(rt.opts.project)
	if err != nil {
		return scan.Project{}, fmt.Errorf("resolve project path %q: %w", rt.opts.project, err)
	}
	p := scan.Project{Name: filepath.Base(abs), Path: abs}
	if sig, ok := rt.det.Detect(abs); ok {
		p.Framework = &sig
	}
	return p, nil
}

// count scans one project and, when history is on, persists a snapshot.
func (rt *runtime) count(ctx context.Context, project scan.Project) (*counter.Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "runtime.count")
	defer span.End()

	cnt, err := counter.New(counter.Options{
		Extensions:       rt.cfg.Count.Extensions,
		IgnoreDirs:       rt.cfg.Ignore.Dirs,
		IgnoreFiles:      rt.cfg.Ignore.Files,
		MinifiedSuffixes: rt.cfg.Count.MinifiedSuffixes,
		ExcludeGlobs:     rt.cfg.Ignore.Globs,
		LargestFiles:     rt.cfg.Count.LargestFiles,
		Workers:          rt.cfg.Count.Workers,
		OnProgress:       rt.progress,
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report, err := cnt.Scan(ctx, project.Path, project.Framework)
	elapsed := time.Since(started)
	observability.ScanDuration.WithLabelValues("count").Observe(elapsed.Seconds())
	if err != nil {
		return nil, err
	}

	observability.FilesProcessedTotal.Add(float64(report.Summary.TotalFiles))
	observability.FileErrorsTotal.Add(float64(len(report.Errors)))
	observability.RecordReport(
		report.Summary.TotalLines,
		report.Summary.CodeLines,
		report.Summary.CommentLines,
		report.Summary.BlankLines,
	)

	rt.saveSnapshot(project, report, elapsed)
	return report, nil
}

func (rt *runtime) progress(p counter.Progress) {
	if rt.onProgress != nil {
		rt.onProgress(p)
	}
}

func (rt *runtime) saveSnapshot(project scan.Project, r *counter.Report, elapsed time.Duration) {
	if rt.store == nil {
		return
	}

	ratio := 0.0
	if r.Summary.TotalLines > 0 {
		ratio = float64(r.Summary.CodeLines) / float64(r.Summary.TotalLines) * 100
	}
	scanID, err := rt.store.SaveSnapshot(project.Path, history.Snapshot{
		Framework:    r.Framework,
		FileCount:    r.Summary.TotalFiles,
		TotalLines:   r.Summary.TotalLines,
		CodeLines:    r.Summary.CodeLines,
		CommentLines: r.Summary.CommentLines,
		BlankLines:   r.Summary.BlankLines,
		ErrorCount:   len(r.Errors),
		CodeRatioPct: ratio,
		Duration:     elapsed,
	})
	if err != nil {
		slog.Warn("failed to save scan snapshot", "project", project.Path, "error", err)
		return
	}
	observability.SnapshotsSavedTotal.Inc()
	slog.Debug("snapshot saved", "project", project.Path, "scan_id", scanID)
}

// trend returns the project's trend report, or nil when history is off
// or holds no snapshots yet.
func (rt *runtime) trend(project scan.Project) *history.TrendReport {
	if rt.store == nil {
		return nil
	}
	snapshots, err := rt.store.LoadSnapshots(project.Path, time.Time{})
	if err != nil || len(snapshots) == 0 {
		return nil
	}
	trend, err := history.BuildTrendReport(project.Path, snapshots, 24*time.Hour)
	if err != nil {
		return nil
	}
	return &trend
}

// watchProject starts a debounced watcher that invalidates cached
// detection results and invokes onChange per change batch.
func (rt *runtime) watchProject(project scan.Project, onChange func()) (*watcher.Watcher, error) {
	w, err := watcher.New(
		rt.cfg.Watch.Debounce,
		rt.cfg.Ignore.Dirs,
		rt.cfg.Ignore.Files,
		rt.cfg.Ignore.Globs,
		func(paths []string) {
			rt.det.Invalidate(project.Path)
			observability.RescansTotal.Inc()
			slog.Debug("change batch", "project", project.Path, "paths", len(paths))
			onChange()
		},
	)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(project.Path); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path != defaultConfigPath {
		return nil, err
	}
	if cfg, fallbackErr := config.Load("./stacklens.example.toml"); fallbackErr == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		// No config present at all: built-in defaults are enough to scan.
		return config.Default(), nil
	}
	return nil, err
}

func applyFlagOverrides(opts *cliOptions, cfg *config.Config) {
	if opts.root != "" {
		cfg.ScanRoot = opts.root
	} else if len(opts.args) > 0 {
		cfg.ScanRoot = opts.args[0]
	}
	if opts.depth > 0 {
		cfg.MaxDepth = opts.depth
	}
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "stacklens", "stacklens.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "stacklens", "stacklens.log")
	}

	return "stacklens.log"
}
