package cliapp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"stacklens/internal/counter"
	"stacklens/internal/report"
	"stacklens/internal/scan"
	"stacklens/internal/shared/util"
)

// runPlain is the --no-ui path: discover and list projects, or count the
// one selected with --project and print or write its report.
func (rt *runtime) runPlain(ctx context.Context) int {
	if rt.opts.project == "" {
		return rt.listProjects(ctx)
	}

	project, err := rt.selectedProject()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	if code := rt.countAndEmit(ctx, project); code != 0 {
		return code
	}

	if !rt.opts.watch {
		return 0
	}

	w, err := rt.watchProject(project, func() {
		if code := rt.countAndEmit(ctx, project); code != 0 {
			slog.Error("rescan failed", "project", project.Path)
		}
	})
	if err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}
	defer w.Close()

	// Block until interrupted so the deferred watcher and store shutdown
	// still run on Ctrl+C.
	waitCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("watching project", "path", project.Path)
	<-waitCtx.Done()
	return 0
}

func (rt *runtime) listProjects(ctx context.Context) int {
	projects, err := rt.discover(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	if rt.opts.jsonOut {
		return rt.emit(projectsJSON(projects))
	}

	if len(projects) == 0 {
		fmt.Printf("No projects found under %s (depth %d)\n", rt.cfg.ScanRoot, rt.cfg.MaxDepth)
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFRAMEWORK\tPATH")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.FrameworkName(), p.Path)
	}
	_ = w.Flush()
	fmt.Println("\nRun with --project <path> to count one of them.")
	return 0
}

func (rt *runtime) countAndEmit(ctx context.Context, project scan.Project) int {
	r, err := rt.count(ctx, project)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	out, err := renderReport(r, rt.opts.jsonOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return rt.emit(out)
}

func (rt *runtime) emit(out string) int {
	if rt.opts.output != "" {
		if err := util.WriteStringWithDirs(rt.opts.output, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", rt.opts.output, err)
			return 1
		}
		slog.Info("report written", "path", rt.opts.output)
		return 0
	}
	fmt.Print(out)
	return 0
}

func renderReport(r *counter.Report, asJSON bool) (string, error) {
	if asJSON {
		return report.NewJSONGenerator(r).Generate()
	}
	return report.NewTextGenerator(r).Generate()
}

func projectsJSON(projects []scan.Project) string {
	type entry struct {
		Name      string `json:"name"`
		Path      string `json:"path"`
		Framework string `json:"framework"`
	}
	entries := make([]entry, 0, len(projects))
	for _, p := range projects {
		entries = append(entries, entry{Name: p.Name, Path: p.Path, Framework: p.FrameworkName()})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "[]\n"
	}
	return string(data) + "\n"
}
