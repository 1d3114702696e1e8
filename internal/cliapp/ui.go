package cliapp

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stacklens/internal/counter"
	"stacklens/internal/history"
	"stacklens/internal/scan"
	"stacklens/internal/watcher"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type uiMode int

const (
	modePicker uiMode = iota
	modeCounting
	modeReport
)

type model struct {
	ctx context.Context
	rt  *runtime

	projectList list.Model
	projects    []scan.Project
	mode        uiMode
	autoCount   bool

	selected  scan.Project
	report    *counter.Report
	trend     *history.TrendReport
	showTrend bool

	spin      spinner.Model
	processed int
	lastPath  string

	watch      *watcher.Watcher
	lastUpdate time.Time
	errMsg     string
}

type reportMsg struct {
	report *counter.Report
	err    error
}

type progressMsg struct {
	path      string
	processed int
}

type rescanMsg struct{}

type watchStartedMsg struct {
	w   *watcher.Watcher
	err error
}

func initialModel(ctx context.Context, rt *runtime, projects []scan.Project, autoCount bool) model {
	items := make([]list.Item, 0, len(projects))
	for _, p := range projects {
		items = append(items, item{
			title: fmt.Sprintf("%s %s", p.Icon(), p.Name),
			desc:  fmt.Sprintf("%s | %s", p.FrameworkName(), p.Path),
		})
	}

	projectList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	projectList.Title = "Discovered Projects"
	projectList.SetShowStatusBar(false)
	projectList.SetFilteringEnabled(true)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		ctx:         ctx,
		rt:          rt,
		projectList: projectList,
		projects:    projects,
		mode:        modePicker,
		autoCount:   autoCount,
		spin:        sp,
		lastUpdate:  time.Now(),
	}
	// Auto-count skips the picker, so the selection must be made here:
	// trend lookup, watch startup and rescans all read it.
	if autoCount && len(projects) == 1 {
		m.selected = projects[0]
		m.mode = modeCounting
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.autoCount && len(m.projects) == 1 {
		return tea.Batch(m.spin.Tick, startCount(m.ctx, m.rt, m.selected))
	}
	return nil
}

func startCount(ctx context.Context, rt *runtime, project scan.Project) tea.Cmd {
	return func() tea.Msg {
		r, err := rt.count(ctx, project)
		return reportMsg{report: r, err: err}
	}
}

func startWatch(rt *runtime, project scan.Project) tea.Cmd {
	return func() tea.Msg {
		w, err := rt.watchProject(project, rt.onRescan)
		return watchStartedMsg{w: w, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.projectList.SetSize(width, height)

	case spinner.TickMsg:
		if m.mode == modeCounting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}

	case progressMsg:
		m.processed = msg.processed
		m.lastPath = msg.path

	case reportMsg:
		if msg.err != nil {
			m.mode = modePicker
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.mode = modeReport
		m.report = msg.report
		m.trend = m.rt.trend(m.selected)
		m.lastUpdate = time.Now()
		m.errMsg = ""
		if m.rt.opts.watch && m.watch == nil {
			return m, startWatch(m.rt, m.selected)
		}
		return m, nil

	case rescanMsg:
		if m.mode == modeReport {
			m.mode = modeCounting
			m.processed = 0
			return m, tea.Batch(m.spin.Tick, startCount(m.ctx, m.rt, m.selected))
		}

	case watchStartedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("watch failed: %v", msg.err)
			return m, nil
		}
		m.watch = msg.w
	}

	if m.mode == modePicker {
		var cmd tea.Cmd
		m.projectList, cmd = m.projectList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Never treat filter input as commands.
	if m.mode == modePicker && m.projectList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.projectList, cmd = m.projectList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.stopWatch()
		return m, tea.Quit

	case "enter":
		if m.mode == modePicker {
			idx := m.projectList.Index()
			if idx < 0 || idx >= len(m.projects) {
				return m, nil
			}
			m.selected = m.projects[idx]
			m.mode = modeCounting
			m.processed = 0
			m.errMsg = ""
			return m, tea.Batch(m.spin.Tick, startCount(m.ctx, m.rt, m.selected))
		}

	case "esc":
		if m.mode == modeReport {
			m.stopWatch()
			m.mode = modePicker
			m.report = nil
			m.showTrend = false
			return m, nil
		}

	case "t":
		if m.mode == modeReport {
			m.showTrend = !m.showTrend
			return m, nil
		}

	case "r":
		if m.mode == modeReport {
			m.mode = modeCounting
			m.processed = 0
			return m, tea.Batch(m.spin.Tick, startCount(m.ctx, m.rt, m.selected))
		}
	}

	if m.mode == modePicker {
		var cmd tea.Cmd
		m.projectList, cmd = m.projectList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) stopWatch() {
	if m.watch != nil {
		_ = m.watch.Close()
		m.watch = nil
	}
}

func (m model) View() string {
	header := titleStyle("stacklens")
	help := renderHelp(m)

	var body string
	switch m.mode {
	case modePicker:
		body = m.projectList.View()
		if m.errMsg != "" {
			body += "\n\n" + errorStyle.Render(m.errMsg)
		}
	case modeCounting:
		body = fmt.Sprintf("%s Counting %s ... %d files processed", m.spin.View(), m.selected.Name, m.processed)
		if m.lastPath != "" {
			body += "\n" + statusStyle.Render(m.lastPath)
		}
	case modeReport:
		body = renderReportView(m)
		if m.showTrend {
			body += "\n\n" + renderTrendOverlay(m.trend)
		}
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}
