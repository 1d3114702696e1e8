package cliapp

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"stacklens/internal/config"
	"stacklens/internal/counter"
	"stacklens/internal/scan"
)

func testModel(t *testing.T, projects []scan.Project) model {
	t.Helper()
	rt, err := newRuntime(config.Default(), cliOptions{})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	t.Cleanup(rt.close)
	return initialModel(context.Background(), rt, projects, false)
}

func TestModel_PickerListsProjects(t *testing.T) {
	m := testModel(t, []scan.Project{
		{Name: "shop", Path: "/tmp/shop"},
		{Name: "blog", Path: "/tmp/blog"},
	})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := updated.View()
	if !strings.Contains(view, "shop") || !strings.Contains(view, "blog") {
		t.Fatalf("expected project names in picker view:\n%s", view)
	}
}

func TestModel_AutoCountSelectsProject(t *testing.T) {
	rt, err := newRuntime(config.Default(), cliOptions{project: "/tmp/shop", watch: true})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	t.Cleanup(rt.close)

	projects := []scan.Project{{Name: "shop", Path: "/tmp/shop"}}
	m := initialModel(context.Background(), rt, projects, true)

	if m.selected.Path != "/tmp/shop" {
		t.Fatalf("expected auto-count to select the project, got %+v", m.selected)
	}
	if m.mode != modeCounting {
		t.Fatalf("expected counting mode, got %v", m.mode)
	}
	if m.Init() == nil {
		t.Fatal("expected an auto-count command")
	}

	// A watch-triggered rescan must target the same selection.
	m.mode = modeReport
	updated, cmd := m.Update(rescanMsg{})
	mm := updated.(model)
	if mm.mode != modeCounting || cmd == nil {
		t.Fatalf("expected rescan to restart counting, got mode %v", mm.mode)
	}
	if mm.selected.Path != "/tmp/shop" {
		t.Fatalf("rescan lost the selection: %+v", mm.selected)
	}
}

func TestModel_EnterStartsCounting(t *testing.T) {
	m := testModel(t, []scan.Project{{Name: "shop", Path: "/tmp/shop"}})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	mm := updated.(model)
	if mm.mode != modeCounting {
		t.Fatalf("expected counting mode, got %v", mm.mode)
	}
	if cmd == nil {
		t.Fatal("expected a count command")
	}
	if mm.selected.Name != "shop" {
		t.Fatalf("unexpected selection: %+v", mm.selected)
	}
}

func TestModel_ReportMsgSwitchesToReportView(t *testing.T) {
	m := testModel(t, []scan.Project{{Name: "shop", Path: "/tmp/shop"}})
	m.selected = m.projects[0]
	m.mode = modeCounting

	r := &counter.Report{
		ProjectName: "shop",
		Framework:   "React",
		CodeRatio:   "80.0%",
	}
	updated, _ := m.Update(reportMsg{report: r})
	mm := updated.(model)
	if mm.mode != modeReport {
		t.Fatalf("expected report mode, got %v", mm.mode)
	}
	if !strings.Contains(mm.View(), "80.0%") {
		t.Fatalf("expected code ratio in report view:\n%s", mm.View())
	}

	// esc returns to the picker for another selection.
	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	mm = updated.(model)
	if mm.mode != modePicker {
		t.Fatalf("expected picker mode after esc, got %v", mm.mode)
	}
}

func TestModel_CountErrorReturnsToPicker(t *testing.T) {
	m := testModel(t, []scan.Project{{Name: "shop", Path: "/tmp/shop"}})
	m.mode = modeCounting

	updated, _ := m.Update(reportMsg{err: context.DeadlineExceeded})
	mm := updated.(model)
	if mm.mode != modePicker {
		t.Fatalf("expected picker mode after error, got %v", mm.mode)
	}
	if mm.errMsg == "" {
		t.Fatal("expected error message to be shown")
	}
}
