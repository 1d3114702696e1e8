// Package scan discovers project roots under a start directory with a
// depth-bounded recursive walk. Discovery is best-effort: unreadable
// subdirectories are skipped, only a failure at the start path itself is
// surfaced.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stacklens/internal/catalog"
	"stacklens/internal/detect"
)

// DefaultMaxDepth bounds discovery when the caller passes no explicit
// depth. Depth 0 is the start directory itself.
const DefaultMaxDepth = 3

// Project is one discovered project root. Framework is nil for projects
// the detector did not recognize, such as an explicitly selected path.
type Project struct {
	Name      string
	Path      string
	Framework *catalog.Signature
}

// FrameworkName returns the display name of the matched framework, or
// "unknown" when there is none.
func (p Project) FrameworkName() string {
	if p.Framework == nil {
		return "unknown"
	}
	return p.Framework.Name
}

// Icon returns the framework glyph used by list views.
func (p Project) Icon() string {
	if p.Framework == nil {
		return "📁"
	}
	return p.Framework.Icon
}

// Options control a Scanner.
type Options struct {
	// IgnoreDirs lists directory basenames never descended into.
	IgnoreDirs []string
	Logger     *slog.Logger
}

// Scanner walks a tree and records every directory the detector matches.
// Projects may nest: a matched directory is still descended into, so
// monorepo members are found as their own projects.
type Scanner struct {
	det        *detect.Detector
	ignoreDirs map[string]struct{}
	log        *slog.Logger
}

// New builds a Scanner around the given detector.
func New(det *detect.Detector, opts Options) *Scanner {
	ignore := make(map[string]struct{}, len(opts.IgnoreDirs))
	for _, name := range opts.IgnoreDirs {
		ignore[name] = struct{}{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{det: det, ignoreDirs: ignore, log: log}
}

// Scan returns the projects found under start, in depth-first order with
// parents before nested children. A maxDepth <= 0 means DefaultMaxDepth.
// The error is non-nil only when start itself is missing, not a directory,
// or not listable, or when ctx is cancelled mid-walk.
func (s *Scanner) Scan(ctx context.Context, start string, maxDepth int) ([]Project, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root %q: %w", start, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("scan root %q: %w", start, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %q: not a directory", start)
	}

	var projects []Project
	if err := s.walk(ctx, abs, 0, maxDepth, &projects); err != nil {
		return nil, err
	}
	s.log.Debug("project scan finished", "root", abs, "projects", len(projects))
	return projects, nil
}

func (s *Scanner) walk(ctx context.Context, dir string, depth, maxDepth int, out *[]Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if sig, ok := s.det.Detect(dir); ok {
		*out = append(*out, Project{
			Name:      filepath.Base(dir),
			Path:      dir,
			Framework: &sig,
		})
	}

	if depth >= maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if depth == 0 {
			return fmt.Errorf("list %q: %w", dir, err)
		}
		s.log.Debug("skipping unreadable directory", "path", dir, "error", err)
		return nil
	}

	for _, entry := range entries {
		// Symlinked directories report as non-dirs here and are not
		// followed, so the walk stays cycle free.
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := s.ignoreDirs[name]; skip {
			continue
		}
		if err := s.walk(ctx, filepath.Join(dir, name), depth+1, maxDepth, out); err != nil {
			return err
		}
	}
	return nil
}
