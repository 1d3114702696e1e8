package cliapp

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"stacklens/internal/counter"
	"stacklens/internal/scan"
)

func runUI(ctx context.Context, rt *runtime) error {
	var (
		projects  []scan.Project
		autoCount bool
		err       error
	)
	if rt.opts.project != "" {
		// Explicit selection skips discovery and goes straight to counting.
		project, err := rt.selectedProject()
		if err != nil {
			return err
		}
		projects = []scan.Project{project}
		autoCount = true
	} else {
		projects, err = rt.discover(ctx)
		if err != nil {
			return err
		}
	}

	m := initialModel(ctx, rt, projects, autoCount)
	p := tea.NewProgram(m, tea.WithAltScreen())

	rt.onProgress = func(pr counter.Progress) {
		p.Send(progressMsg{path: pr.Path, processed: pr.Processed})
	}
	rt.onRescan = func() {
		p.Send(rescanMsg{})
	}

	_, err = p.Run()
	return err
}
