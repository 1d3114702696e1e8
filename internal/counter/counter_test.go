package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stacklens/internal/catalog"
	"stacklens/internal/classify"
)

func testOptions() Options {
	return Options{
		Extensions:       []string{".js", ".jsx", ".ts", ".tsx", ".css", ".scss", ".html", ".json"},
		IgnoreDirs:       []string{"node_modules", "dist", "build", "coverage"},
		IgnoreFiles:      []string{"package-lock.json"},
		MinifiedSuffixes: []string{".min.js", ".min.css"},
		Workers:          4,
	}
}

func newCounter(t *testing.T, opts Options) *Counter {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatalf("new counter: %v", err)
	}
	return c
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func TestScanSummaryAndRatio(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		// 10 lines: 8 code, 1 comment, 1 trailing blank.
		"a.js": "const a = 1\nconst b = 2\nconst c = 3\nconst d = 4\nconst e = 5\nconst f = 6\nconst g = 7\nconst h = 8\n// comment\n",
		// 5 lines, all code.
		"b.css": ".a { color: red; }\n.b { color: blue; }\n.c { margin: 0; }\n.d { padding: 0; }\n.e { border: 0; }",
	})

	report, err := newCounter(t, testOptions()).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	expected := Summary{TotalFiles: 2, TotalLines: 15, CodeLines: 13, CommentLines: 1, BlankLines: 1}
	if report.Summary != expected {
		t.Fatalf("expected summary %+v, got %+v", expected, report.Summary)
	}
	if report.CodeRatio != "86.7%" {
		t.Fatalf("expected ratio %q, got %q", "86.7%", report.CodeRatio)
	}

	js := report.FileTypes[".js"]
	if js.Files != 1 || js.Lines != 10 || js.Code != 8 {
		t.Fatalf("unexpected .js bucket: %+v", js)
	}
	css := report.FileTypes[".css"]
	if css.Files != 1 || css.Lines != 5 || css.Code != 5 {
		t.Fatalf("unexpected .css bucket: %+v", css)
	}

	// No framework: everything lands in the fallback category.
	other := report.Categories[catalog.CategoryOther]
	if other.Files != 2 || other.Lines != 15 {
		t.Fatalf("unexpected other bucket: %+v", other)
	}
}

func TestScanEmptyProject(t *testing.T) {
	t.Parallel()

	report, err := newCounter(t, testOptions()).Scan(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if report.Summary.TotalFiles != 0 {
		t.Fatalf("expected no files, got %d", report.Summary.TotalFiles)
	}
	if report.CodeRatio != "0%" {
		t.Fatalf("expected ratio %q, got %q", "0%", report.CodeRatio)
	}
	if report.LargestFiles == nil || report.Errors == nil {
		t.Fatal("expected empty, non-nil slices")
	}
}

func TestScanCategorizesWithFramework(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/components/Button.jsx": "export const Button = () => null\n",
		"src/hooks/useAuth.js":      "export const useAuth = () => null\n",
		"src/index.js":              "import './app'\n",
	})

	react, ok := catalog.Default().Lookup("react")
	if !ok {
		t.Fatal("expected react signature")
	}

	report, err := newCounter(t, testOptions()).Scan(context.Background(), root, &react)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if report.Framework != "React" {
		t.Fatalf("expected framework %q, got %q", "React", report.Framework)
	}
	for _, cat := range []string{"components", "hooks", catalog.CategoryOther} {
		if b := report.Categories[cat]; b.Files != 1 {
			t.Fatalf("expected 1 file in %q, got %+v", cat, b)
		}
	}
}

func TestScanBucketCompleteness(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 12; i++ {
		files[fmt.Sprintf("src/components/c%d.jsx", i)] = strings.Repeat("x()\n", i+1)
		files[fmt.Sprintf("src/util%d.ts", i)] = "export {}\n"
		files[fmt.Sprintf("styles/s%d.css", i)] = "a { b: c; }\n"
	}
	writeTree(t, root, files)

	react, _ := catalog.Default().Lookup("react")
	report, err := newCounter(t, testOptions()).Scan(context.Background(), root, &react)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	var byType, byCategory int
	for _, b := range report.FileTypes {
		byType += b.Files
	}
	for _, b := range report.Categories {
		byCategory += b.Files
	}
	if byType != report.Summary.TotalFiles {
		t.Fatalf("extension buckets sum to %d, want %d", byType, report.Summary.TotalFiles)
	}
	if byCategory != report.Summary.TotalFiles {
		t.Fatalf("category buckets sum to %d, want %d", byCategory, report.Summary.TotalFiles)
	}
}

func TestScanLargestFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{}
	for i := 1; i <= 8; i++ {
		// i+1 lines each (content plus trailing blank).
		files[fmt.Sprintf("f%d.js", i)] = strings.Repeat("call()\n", i)
	}
	writeTree(t, root, files)

	report, err := newCounter(t, testOptions()).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(report.LargestFiles) != DefaultLargestFiles {
		t.Fatalf("expected %d entries, got %d", DefaultLargestFiles, len(report.LargestFiles))
	}
	for i := 1; i < len(report.LargestFiles); i++ {
		if report.LargestFiles[i-1].Lines < report.LargestFiles[i].Lines {
			t.Fatalf("largest files not sorted descending: %+v", report.LargestFiles)
		}
	}
	if report.LargestFiles[0].Path != "f8.js" {
		t.Fatalf("expected f8.js first, got %q", report.LargestFiles[0].Path)
	}
}

func TestScanLargestFilesTieBreak(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.js": "x()\nx()\n",
		"a.js": "x()\nx()\n",
		"c.js": "x()\nx()\n",
	})

	report, err := newCounter(t, testOptions()).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	var paths []string
	for _, f := range report.LargestFiles {
		paths = append(paths, f.Path)
	}
	expected := []string{"a.js", "b.js", "c.js"}
	for i, p := range expected {
		if paths[i] != p {
			t.Fatalf("expected %v, got %v", expected, paths)
		}
	}
}

func TestScanSkipsIgnoredAndMinified(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.js":                    "code()\n",
		"app.min.js":                "minified\n",
		"vendor.min.css":            "minified\n",
		".hidden.js":                "hidden\n",
		"package-lock.json":         "{}\n",
		"node_modules/dep/index.js": "dep()\n",
		"dist/bundle.js":            "bundle()\n",
		".git/hooks/pre-commit.js":  "hook()\n",
		"README.md":                 "# readme\n",
	})

	report, err := newCounter(t, testOptions()).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if report.Summary.TotalFiles != 1 {
		t.Fatalf("expected exactly app.js, got %d files: %+v", report.Summary.TotalFiles, report.FileTypes)
	}
}

func TestScanExcludeGlobs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.js":          "code()\n",
		"src/legacy/old.js":   "old()\n",
		"src/legacy/older.js": "older()\n",
	})

	opts := testOptions()
	opts.ExcludeGlobs = []string{"src/legacy/**"}

	report, err := newCounter(t, opts).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if report.Summary.TotalFiles != 1 {
		t.Fatalf("expected 1 file after exclusion, got %d", report.Summary.TotalFiles)
	}
}

func TestScanBadExcludeGlob(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.ExcludeGlobs = []string{"[unclosed"}
	if _, err := New(opts); err == nil {
		t.Fatal("expected an error for an invalid exclude pattern")
	}
}

func TestScanIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/components/Button.jsx": "export const Button = () => null\n// note\n",
		"src/index.js":              "import './app'\n\n",
		"styles/app.css":            "/* theme */\nbody { margin: 0; }\n",
	})

	react, _ := catalog.Default().Lookup("react")
	c := newCounter(t, testOptions())

	first, err := c.Scan(context.Background(), root, &react)
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	second, err := c.Scan(context.Background(), root, &react)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	a, err := json.MarshalIndent(first, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.MarshalIndent(second, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("reports differ:\n%s\n---\n%s", a, b)
	}
}

func TestScanMissingProject(t *testing.T) {
	t.Parallel()

	_, err := newCounter(t, testOptions()).Scan(context.Background(), filepath.Join(t.TempDir(), "gone"), nil)
	if err == nil {
		t.Fatal("expected an error for a missing project path")
	}
}

func TestScanCancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "x()\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newCounter(t, testOptions()).Scan(ctx, root, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestScanProgressEvents(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("f%d.js", i)] = "x()\n"
	}
	writeTree(t, root, files)

	var events []Progress
	opts := testOptions()
	opts.ProgressRate = 10000
	opts.OnProgress = func(p Progress) { events = append(events, p) }

	report, err := newCounter(t, opts).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected progress events")
	}
	last := events[len(events)-1]
	if last.Processed > report.Summary.TotalFiles {
		t.Fatalf("progress overshot: %d > %d", last.Processed, report.Summary.TotalFiles)
	}
}

func TestFoldRecordsErrors(t *testing.T) {
	t.Parallel()

	agg := newAggregator(DefaultLargestFiles)
	agg.fold(fileResult{rel: "src/ok.js", ext: ".js", category: "other",
		stats: classify.LineStats{Total: 3, Code: 3}})
	agg.fold(fileResult{rel: "src/broken.js", err: errors.New("permission denied")})

	report := agg.seal("p", "/p", "unknown")
	if report.Summary.TotalFiles != 1 {
		t.Fatalf("errored file must not count, got %d files", report.Summary.TotalFiles)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 error entry, got %d", len(report.Errors))
	}
	if !strings.Contains(report.Errors[0], "src/broken.js") {
		t.Fatalf("error entry missing path: %q", report.Errors[0])
	}
}
