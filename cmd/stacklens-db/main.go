// # cmd/stacklens-db/main.go
//
// Thin browser for the stacklens snapshot database. No scanning logic
// lives here; it is queries and formatting over the history store.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"stacklens/internal/config"
	"stacklens/internal/history"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("stacklens-db", flag.ContinueOnError)
	dbPath := fs.String("db", "", "Path to the history database (defaults to the stacklens state dir)")
	project := fs.String("project", "", "Project key (absolute project path)")
	since := fs.Duration("since", 0, "Only include snapshots newer than this age (e.g. 72h)")
	window := fs.Duration("window", 24*time.Hour, "Moving-average window for trend output")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: stacklens-db [flags] <projects|snapshots|show <scan-id>|trend>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	path := *dbPath
	if path == "" {
		path = config.Default().History.Path
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer store.Close()

	var sinceTime time.Time
	if *since > 0 {
		sinceTime = time.Now().UTC().Add(-*since)
	}

	switch fs.Arg(0) {
	case "projects":
		err = listProjects(store)
	case "snapshots":
		err = listSnapshots(store, *project, sinceTime)
	case "show":
		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "show requires a scan ID")
			return 2
		}
		err = showSnapshot(store, fs.Arg(1))
	case "trend":
		err = showTrend(store, *project, sinceTime, *window)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func listProjects(store *history.Store) error {
	projects, err := store.Projects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No snapshots stored yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tFRAMEWORK\tSNAPSHOTS\tFIRST\tLAST")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			p.ProjectKey, p.Framework, p.SnapshotCount,
			p.FirstScan.Format(time.RFC3339), p.LastScan.Format(time.RFC3339))
	}
	return w.Flush()
}

func listSnapshots(store *history.Store, project string, since time.Time) error {
	snapshots, err := store.LoadSnapshots(project, since)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("No snapshots match.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCAN ID\tTIMESTAMP\tFILES\tLINES\tCODE\tRATIO\tERRORS\tDURATION")
	for _, s := range snapshots {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.1f%%\t%d\t%s\n",
			s.ScanID, s.Timestamp.Format(time.RFC3339),
			s.FileCount, s.TotalLines, s.CodeLines, s.CodeRatioPct, s.ErrorCount, s.Duration)
	}
	return w.Flush()
}

func showSnapshot(store *history.Store, scanID string) error {
	s, err := store.LoadSnapshot(scanID)
	if err != nil {
		return err
	}

	fmt.Printf("Scan:      %s\n", s.ScanID)
	fmt.Printf("Project:   %s\n", s.ProjectKey)
	fmt.Printf("Framework: %s\n", s.Framework)
	fmt.Printf("Timestamp: %s\n", s.Timestamp.Format(time.RFC3339))
	fmt.Printf("Files:     %d\n", s.FileCount)
	fmt.Printf("Lines:     %d (code %d, comments %d, blank %d)\n",
		s.TotalLines, s.CodeLines, s.CommentLines, s.BlankLines)
	fmt.Printf("Ratio:     %.1f%%\n", s.CodeRatioPct)
	fmt.Printf("Errors:    %d\n", s.ErrorCount)
	fmt.Printf("Duration:  %s\n", s.Duration)
	return nil
}

func showTrend(store *history.Store, project string, since time.Time, window time.Duration) error {
	snapshots, err := store.LoadSnapshots(project, since)
	if err != nil {
		return err
	}
	report, err := history.BuildTrendReport(project, snapshots, window)
	if err != nil {
		return err
	}

	fmt.Printf("Trend for %s (%d scans, window %s)\n\n", report.ProjectKey, report.ScanCount, report.Window)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tLINES\tΔLINES\tΔCODE\tGROWTH\tRATIO\tAVG RATIO")
	for _, p := range report.Points {
		fmt.Fprintf(w, "%s\t%d\t%+d\t%+d\t%.2f%%\t%.1f%%\t%.1f%%\n",
			p.Timestamp.Format(time.RFC3339), p.TotalLines,
			p.DeltaLines, p.DeltaCode, p.LineGrowthPct, p.CodeRatioPct, p.AvgCodeRatioPct)
	}
	return w.Flush()
}
