package cliapp

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"stacklens/internal/counter"
	"stacklens/internal/history"
	"stacklens/internal/shared/util"
)

func renderHelp(m model) string {
	switch m.mode {
	case modePicker:
		return statusStyle.Render("Keys: / filter | enter count project | q quit")
	case modeCounting:
		return statusStyle.Render("Keys: q quit")
	default:
		keys := "Keys: esc back | r rescan | t trend overlay | q quit"
		if m.watch != nil {
			keys += " | watching for changes"
		}
		return statusStyle.Render(keys)
	}
}

func renderReportView(m model) string {
	r := m.report
	if r == nil {
		return statusStyle.Render("No report available.")
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s (%s)\n", m.selected.Icon(), r.ProjectName, r.Framework))
	b.WriteString(statusStyle.Render(r.ProjectPath) + "\n\n")

	summary := fmt.Sprintf("%d files | %d lines | %s code",
		r.Summary.TotalFiles, r.Summary.TotalLines, r.CodeRatio)
	b.WriteString(successStyle.Render(summary) + "\n")
	b.WriteString(fmt.Sprintf("code %d / comments %d / blank %d\n",
		r.Summary.CodeLines, r.Summary.CommentLines, r.Summary.BlankLines))

	if len(r.FileTypes) > 0 {
		b.WriteString("\n" + accentStyle.Render("By file type") + "\n")
		b.WriteString(renderBuckets(r.FileTypes))
	}
	if len(r.Categories) > 0 {
		b.WriteString("\n" + accentStyle.Render("By category") + "\n")
		b.WriteString(renderBuckets(r.Categories))
	}

	if len(r.LargestFiles) > 0 {
		b.WriteString("\n" + accentStyle.Render("Largest files") + "\n")
		for i, f := range r.LargestFiles {
			b.WriteString(fmt.Sprintf("  %d. %s (%d lines, %d code)\n", i+1, f.Path, f.Lines, f.Code))
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("%d files could not be processed", len(r.Errors))) + "\n")
		for _, msg := range r.Errors {
			b.WriteString("  " + msg + "\n")
		}
	}

	b.WriteString("\n" + statusStyle.Render("Last scan: "+m.lastUpdate.Format("15:04:05")))
	return b.String()
}

func renderBuckets(buckets map[string]counter.Bucket) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, name := range util.SortedStringKeys(buckets) {
		bucket := buckets[name]
		fmt.Fprintf(w, "  %s\t%d files\t%d lines\t%d code\n", name, bucket.Files, bucket.Lines, bucket.Code)
	}
	_ = w.Flush()
	return b.String()
}

func renderTrendOverlay(report *history.TrendReport) string {
	if report == nil || len(report.Points) == 0 {
		return statusStyle.Render("Trend overlay unavailable (enable history to capture snapshots).")
	}
	last := report.Points[len(report.Points)-1]
	return strings.Join([]string{
		accentStyle.Render("Trend Overlay"),
		fmt.Sprintf("  Window: %s | Scans: %d", report.Window, report.ScanCount),
		fmt.Sprintf("  Line growth: %+d (%.2f%%)", last.DeltaLines, last.LineGrowthPct),
		fmt.Sprintf("  Code delta: %+d | Files delta: %+d", last.DeltaCode, last.DeltaFiles),
		fmt.Sprintf("  Code ratio: %.1f%% (%+.2f, avg %.1f%%)", last.CodeRatioPct, last.DeltaRatioPct, last.AvgCodeRatioPct),
	}, "\n")
}
