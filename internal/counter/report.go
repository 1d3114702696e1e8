package counter

import (
	"fmt"
	"sort"
)

// Summary holds the project-wide line totals.
type Summary struct {
	TotalFiles   int `json:"totalFiles"`
	TotalLines   int `json:"totalLines"`
	CodeLines    int `json:"codeLines"`
	CommentLines int `json:"commentLines"`
	BlankLines   int `json:"blankLines"`
}

// Bucket aggregates the files sharing one extension or one category.
type Bucket struct {
	Files int `json:"fileCount"`
	Lines int `json:"totalLines"`
	Code  int `json:"codeLines"`
}

// FileSummary is the lightweight per-file record kept for the
// largest-files ranking.
type FileSummary struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
	Code  int    `json:"code"`
}

// Report is the immutable result of one counting scan. Maps, slices and the
// derived ratio are fully determined by the tree's content, so scanning an
// unchanged tree twice marshals to identical bytes.
type Report struct {
	ProjectName  string            `json:"projectName"`
	ProjectPath  string            `json:"projectPath"`
	Framework    string            `json:"framework"`
	Summary      Summary           `json:"summary"`
	FileTypes    map[string]Bucket `json:"fileTypes"`
	Categories   map[string]Bucket `json:"categories"`
	LargestFiles []FileSummary     `json:"largestFiles"`
	Errors       []string          `json:"errors"`
	CodeRatio    string            `json:"codeRatio"`
}

// aggregator owns all mutation during a scan. Workers never touch it;
// results flow to it over a channel and are folded one at a time.
type aggregator struct {
	cap     int
	summary Summary
	types   map[string]Bucket
	cats    map[string]Bucket
	largest []FileSummary
	errs    []string
}

func newAggregator(largestCap int) *aggregator {
	return &aggregator{
		cap:     largestCap,
		types:   make(map[string]Bucket),
		cats:    make(map[string]Bucket),
		largest: []FileSummary{},
		errs:    []string{},
	}
}

// fold records one file result: either an error entry or exactly one
// contribution to the totals, one extension bucket and one category bucket.
func (a *aggregator) fold(r fileResult) {
	if r.err != nil {
		a.errs = append(a.errs, fmt.Sprintf("%s: %v", r.rel, r.err))
		return
	}

	a.summary.TotalFiles++
	a.summary.TotalLines += r.stats.Total
	a.summary.CodeLines += r.stats.Code
	a.summary.CommentLines += r.stats.Comment
	a.summary.BlankLines += r.stats.Blank

	t := a.types[r.ext]
	t.Files++
	t.Lines += r.stats.Total
	t.Code += r.stats.Code
	a.types[r.ext] = t

	c := a.cats[r.category]
	c.Files++
	c.Lines += r.stats.Total
	c.Code += r.stats.Code
	a.cats[r.category] = c

	a.largest = append(a.largest, FileSummary{Path: r.rel, Lines: r.stats.Total, Code: r.stats.Code})
	if len(a.largest) > a.cap {
		sortLargest(a.largest)
		a.largest = a.largest[:a.cap]
	}
}

// seal finishes the scan: final ordering passes, derived ratio, then the
// aggregator must not be folded into again.
func (a *aggregator) seal(projectName, projectPath, framework string) *Report {
	sortLargest(a.largest)
	sort.Strings(a.errs)

	ratio := "0%"
	if a.summary.TotalLines > 0 {
		ratio = fmt.Sprintf("%.1f%%", float64(a.summary.CodeLines)/float64(a.summary.TotalLines)*100)
	}

	return &Report{
		ProjectName:  projectName,
		ProjectPath:  projectPath,
		Framework:    framework,
		Summary:      a.summary,
		FileTypes:    a.types,
		Categories:   a.cats,
		LargestFiles: a.largest,
		Errors:       a.errs,
		CodeRatio:    ratio,
	}
}

func sortLargest(files []FileSummary) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].Lines != files[j].Lines {
			return files[i].Lines > files[j].Lines
		}
		return files[i].Path < files[j].Path
	})
}
