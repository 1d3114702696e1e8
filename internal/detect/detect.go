// Package detect decides whether a directory is a recognized project root
// and which framework signature it matches. Detection is best-effort: every
// I/O or parse failure is treated as "no match" so that a parent scan is
// never aborted.
package detect

import (
	"log/slog"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"stacklens/internal/catalog"
	"stacklens/internal/shared/util"
)

// Detector matches directories against a framework catalog. The zero value
// is not usable; construct with New or NewCached.
type Detector struct {
	catalog *catalog.Catalog
	cache   *lru.Cache[string, cached]
	log     *slog.Logger
}

type cached struct {
	id string
	ok bool
}

// New returns a detector over the given catalog.
func New(cat *catalog.Catalog) *Detector {
	return &Detector{
		catalog: cat,
		log:     slog.Default(),
	}
}

// NewCached returns a detector that memoizes results per directory path.
// Intended for watch mode, where the same directories are probed on every
// rescan; call Invalidate when the tree underneath changes.
func NewCached(cat *catalog.Catalog, size int) *Detector {
	d := New(cat)
	// lru.New only fails for size <= 0.
	if c, err := lru.New[string, cached](size); err == nil {
		d.cache = c
	}
	return d
}

// Detect reports the first signature in catalog order matching the
// directory, or false when none does or the directory cannot be listed.
func (d *Detector) Detect(dir string) (catalog.Signature, bool) {
	if d.cache != nil {
		if hit, ok := d.cache.Get(dir); ok {
			if !hit.ok {
				return catalog.Signature{}, false
			}
			if sig, found := d.catalog.Lookup(hit.id); found {
				return sig, true
			}
		}
	}

	sig, ok := d.detect(dir)
	if d.cache != nil {
		d.cache.Add(dir, cached{id: sig.ID, ok: ok})
	}
	return sig, ok
}

func (d *Detector) detect(dir string) (catalog.Signature, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		d.log.Debug("detect: directory not listable", "path", dir, "error", err)
		return catalog.Signature{}, false
	}

	names := make(map[string]bool, len(entries))
	dirs := make(map[string]bool)
	for _, e := range entries {
		names[e.Name()] = true
		if e.IsDir() {
			dirs[e.Name()] = true
		}
	}

	deps := readDependencies(dir)

	for _, sig := range d.catalog.Signatures() {
		if matches(sig, names, dirs, deps) {
			return sig, true
		}
	}
	return catalog.Signature{}, false
}

// matches applies the three signature checks: a config file among the
// entries, a dependency-name substring in the manifest, or a
// characteristic directory among the entries.
func matches(sig catalog.Signature, names, dirs map[string]bool, deps map[string]string) bool {
	for _, f := range sig.ConfigFiles {
		if names[f] {
			return true
		}
	}
	for _, indicator := range sig.Dependencies {
		for name := range deps {
			if strings.Contains(name, indicator) {
				return true
			}
		}
	}
	for _, d := range sig.Dirs {
		if dirs[d] {
			return true
		}
	}
	return false
}

// Invalidate drops cached results for root and every path beneath it.
// No-op on uncached detectors.
func (d *Detector) Invalidate(root string) {
	if d.cache == nil {
		return
	}
	for _, key := range d.cache.Keys() {
		if util.HasPathPrefix(key, root) {
			d.cache.Remove(key)
		}
	}
}
