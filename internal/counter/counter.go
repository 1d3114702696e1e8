// Package counter walks one project tree, classifies every eligible source
// file and aggregates the line statistics into a Report. Reading and
// classification run on a bounded worker pool; a single aggregation loop
// owns every mutation, so each file contributes exactly once.
package counter

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"stacklens/internal/catalog"
	"stacklens/internal/classify"
	"stacklens/internal/shared/util"
)

// DefaultLargestFiles caps the largest-files ranking kept in a Report.
const DefaultLargestFiles = 5

// Progress describes one processed file, delivered to the optional
// subscriber. Events are throttled and purely informational; they never
// influence aggregation.
type Progress struct {
	Path      string
	Processed int
}

// Options configure a Counter.
type Options struct {
	// Extensions lists the recognized file extensions, with leading dot.
	Extensions []string
	// IgnoreDirs lists directory basenames excluded from the walk.
	IgnoreDirs []string
	// IgnoreFiles lists file basenames excluded from counting.
	IgnoreFiles []string
	// MinifiedSuffixes excludes generated artifacts by filename suffix.
	MinifiedSuffixes []string
	// ExcludeGlobs are additional glob patterns matched against the
	// project-relative slash path of each file.
	ExcludeGlobs []string
	// LargestFiles caps the ranking; DefaultLargestFiles when <= 0.
	LargestFiles int
	// Workers sizes the read pool; runtime.NumCPU() when <= 0.
	Workers int
	// OnProgress, when set, receives throttled per-file events.
	OnProgress func(Progress)
	// ProgressRate caps progress events per second; 30 when <= 0.
	ProgressRate float64
	Logger       *slog.Logger
}

// Counter counts one project at a time. It is safe for repeated use; all
// per-scan state lives in the scan call.
type Counter struct {
	exts         map[string]struct{}
	ignoreDirs   map[string]struct{}
	ignoreFiles  map[string]struct{}
	minified     []string
	excludes     []glob.Glob
	largestCap   int
	workers      int
	onProgress   func(Progress)
	progressRate float64
	log          *slog.Logger
}

// New validates the options and builds a Counter. Invalid exclude
// patterns are a construction error.
func New(opts Options) (*Counter, error) {
	c := &Counter{
		exts:         make(map[string]struct{}, len(opts.Extensions)),
		ignoreDirs:   make(map[string]struct{}, len(opts.IgnoreDirs)),
		ignoreFiles:  make(map[string]struct{}, len(opts.IgnoreFiles)),
		minified:     opts.MinifiedSuffixes,
		largestCap:   opts.LargestFiles,
		workers:      opts.Workers,
		onProgress:   opts.OnProgress,
		progressRate: opts.ProgressRate,
		log:          opts.Logger,
	}
	for _, ext := range opts.Extensions {
		c.exts[strings.ToLower(ext)] = struct{}{}
	}
	for _, name := range opts.IgnoreDirs {
		c.ignoreDirs[name] = struct{}{}
	}
	for _, name := range opts.IgnoreFiles {
		c.ignoreFiles[name] = struct{}{}
	}
	for _, pattern := range opts.ExcludeGlobs {
		g, err := glob.Compile(util.NormalizePatternPath(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", pattern, err)
		}
		c.excludes = append(c.excludes, g)
	}
	if c.largestCap <= 0 {
		c.largestCap = DefaultLargestFiles
	}
	if c.workers <= 0 {
		c.workers = runtime.NumCPU()
	}
	if c.progressRate <= 0 {
		c.progressRate = 30
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

type fileResult struct {
	rel      string
	ext      string
	category string
	stats    classify.LineStats
	err      error
}

// Scan counts the project at projectPath, categorizing files with sig. A
// nil sig puts every file in the "other" category. Per-file failures land
// in Report.Errors; the returned error is reserved for an unusable project
// path or context cancellation.
func (c *Counter) Scan(ctx context.Context, projectPath string, sig *catalog.Signature) (*Report, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolve project path %q: %w", projectPath, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project path %q: %w", projectPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %q: not a directory", projectPath)
	}

	tasks := make(chan string, 64)
	results := make(chan fileResult, 64)
	walkDone := make(chan error, 1)

	go func() {
		err := c.walkFiles(ctx, root, tasks)
		close(tasks)
		walkDone <- err
	}()

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				results <- c.processFile(root, path, sig)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	limiter := util.NewLimiter(c.progressRate, 1)
	agg := newAggregator(c.largestCap)
	for r := range results {
		agg.fold(r)
		if c.onProgress != nil && r.err == nil && limiter.Allow(1) {
			c.onProgress(Progress{Path: r.rel, Processed: agg.summary.TotalFiles})
		}
	}

	if err := <-walkDone; err != nil {
		return nil, err
	}

	framework := "unknown"
	if sig != nil {
		framework = sig.Name
	}
	report := agg.seal(filepath.Base(root), root, framework)
	c.log.Debug("count finished",
		"project", root,
		"files", report.Summary.TotalFiles,
		"lines", report.Summary.TotalLines,
		"errors", len(report.Errors))
	return report, nil
}

// walkFiles feeds every eligible file path into tasks. Unreadable
// subdirectories are skipped; only a failure at the root itself or a
// cancelled context aborts the walk.
func (c *Counter) walkFiles(ctx context.Context, root string, tasks chan<- string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == root {
				return fmt.Errorf("walk project %q: %w", root, err)
			}
			c.log.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if _, skip := c.ignoreDirs[name]; skip {
				return fs.SkipDir
			}
			return nil
		}
		if !c.eligible(root, path, d) {
			return nil
		}
		select {
		case tasks <- path:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (c *Counter) eligible(root, path string, d fs.DirEntry) bool {
	if !d.Type().IsRegular() {
		return false
	}
	base := d.Name()
	if strings.HasPrefix(base, ".") {
		return false
	}
	if _, skip := c.ignoreFiles[base]; skip {
		return false
	}
	for _, suffix := range c.minified {
		if strings.HasSuffix(base, suffix) {
			return false
		}
	}
	if _, ok := c.exts[strings.ToLower(filepath.Ext(base))]; !ok {
		return false
	}
	if len(c.excludes) > 0 {
		rel := util.RelSlash(root, path)
		for _, g := range c.excludes {
			if g.Match(rel) {
				return false
			}
		}
	}
	return true
}

func (c *Counter) processFile(root, path string, sig *catalog.Signature) fileResult {
	rel := util.RelSlash(root, path)
	ext := strings.ToLower(filepath.Ext(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{rel: rel, err: err}
	}

	category := catalog.CategoryOther
	if sig != nil {
		category = sig.Category(rel)
	}

	return fileResult{
		rel:      rel,
		ext:      ext,
		category: category,
		stats:    classify.Classify(string(data), ext),
	}
}
