// Package report renders counting results for terminals, files and
// machine consumers. Generators are stateless views over a Report; none
// of them mutate it.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"stacklens/internal/counter"
	"stacklens/internal/shared/util"
)

// TextGenerator renders a Report as an aligned plain-text summary.
type TextGenerator struct {
	report *counter.Report
}

func NewTextGenerator(r *counter.Report) *TextGenerator {
	return &TextGenerator{report: r}
}

func (t *TextGenerator) Generate() (string, error) {
	r := t.report
	var buf strings.Builder

	fmt.Fprintf(&buf, "📦 %s (%s)\n", r.ProjectName, r.Framework)
	fmt.Fprintf(&buf, "   %s\n\n", r.ProjectPath)
	fmt.Fprintf(&buf, "📊 %d files, %d lines, %s code\n", r.Summary.TotalFiles, r.Summary.TotalLines, r.CodeRatio)
	fmt.Fprintf(&buf, "   code %d / comments %d / blank %d\n", r.Summary.CodeLines, r.Summary.CommentLines, r.Summary.BlankLines)

	if len(r.FileTypes) > 0 {
		buf.WriteString("\nBy file type:\n")
		writeBuckets(&buf, r.FileTypes)
	}
	if len(r.Categories) > 0 {
		buf.WriteString("\nBy category:\n")
		writeBuckets(&buf, r.Categories)
	}

	if len(r.LargestFiles) > 0 {
		buf.WriteString("\nLargest files:\n")
		w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for i, f := range r.LargestFiles {
			fmt.Fprintf(w, "  %d.\t%s\t%d lines\t%d code\n", i+1, f.Path, f.Lines, f.Code)
		}
		if err := w.Flush(); err != nil {
			return "", err
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&buf, "\n⚠️  %d files could not be processed:\n", len(r.Errors))
		for _, msg := range r.Errors {
			fmt.Fprintf(&buf, "   %s\n", msg)
		}
	}

	return buf.String(), nil
}

func writeBuckets(buf *strings.Builder, buckets map[string]counter.Bucket) {
	w := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  name\tfiles\tlines\tcode")
	for _, name := range util.SortedStringKeys(buckets) {
		b := buckets[name]
		fmt.Fprintf(w, "  %s\t%d\t%d\t%d\n", name, b.Files, b.Lines, b.Code)
	}
	// Flushing into a strings.Builder cannot fail.
	_ = w.Flush()
}
