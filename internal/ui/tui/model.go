// Package tui is the interactive terminal view used by `watch --ui`.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"layerguard/internal/core/app"
	"layerguard/internal/engine/rules"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	violationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
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
	file        string
	line        int
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelViolations panelMode = iota
	panelFiles
)

// ReportMsg delivers a finished check, or the error that stopped it.
type ReportMsg struct {
	Report  app.Report
	Err     error
	Changed []string
}

type sourceJumpResultMsg struct {
	target string
	err    error
}

type model struct {
	root          string
	violationList list.Model
	fileList      list.Model
	mode          panelMode
	recheck       func()

	report     app.Report
	hasReport  bool
	checkErr   error
	changed    []string
	lastUpdate time.Time
	jumpStatus string
}

func initialModel(root string, recheck func()) model {
	violationList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	violationList.Title = "Violations"
	violationList.SetShowStatusBar(false)
	violationList.SetFilteringEnabled(true)

	fileList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	fileList.Title = "Files"
	fileList.SetShowStatusBar(false)
	fileList.SetFilteringEnabled(true)

	return model{
		root:          root,
		violationList: violationList,
		fileList:      fileList,
		mode:          panelViolations,
		recheck:       recheck,
		lastUpdate:    time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.violationList.SetSize(width, height)
		m.fileList.SetSize(width, height)
	case ReportMsg:
		m.lastUpdate = time.Now()
		m.changed = msg.Changed
		m.checkErr = msg.Err
		if msg.Err == nil {
			m.report = msg.Report
			m.hasReport = true
			m.violationList.SetItems(violationItems(msg.Report))
			m.fileList.SetItems(fileItems(msg.Report))
		}
	case sourceJumpResultMsg:
		if msg.err != nil {
			m.jumpStatus = statusStyle.Render(fmt.Sprintf("Source jump failed: %v", msg.err))
		} else {
			m.jumpStatus = statusStyle.Render(fmt.Sprintf("Opened source: %s", msg.target))
		}
	}

	var cmd tea.Cmd
	if m.mode == panelViolations {
		m.violationList, cmd = m.violationList.Update(msg)
	} else {
		m.fileList, cmd = m.fileList.Update(msg)
	}
	return m, cmd
}

func violationItems(r app.Report) []list.Item {
	items := make([]list.Item, 0, len(r.Violations))
	for _, v := range r.Violations {
		items = append(items, item{
			title: fmt.Sprintf("%s:%d:%d", v.File, v.Line, v.Column),
			desc:  fmt.Sprintf("%s (%s)", v.Message, v.RuleID),
			file:  v.File,
			line:  v.Line,
		})
	}
	return items
}

func fileItems(r app.Report) []list.Item {
	perFile := make(map[string]map[string]int)
	first := make(map[string]int)
	for _, v := range r.Violations {
		if perFile[v.File] == nil {
			perFile[v.File] = make(map[string]int)
			first[v.File] = v.Line
		}
		perFile[v.File][v.RuleID]++
	}
	files := make([]string, 0, len(perFile))
	for f := range perFile {
		files = append(files, f)
	}
	sort.Strings(files)

	items := make([]list.Item, 0, len(files))
	for _, f := range files {
		parts := make([]string, 0, len(rules.Catalog))
		total := 0
		for _, d := range rules.Catalog {
			if n := perFile[f][d.ID]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", d.ID, n))
				total += n
			}
		}
		items = append(items, item{
			title: fmt.Sprintf("%s (%d)", f, total),
			desc:  strings.Join(parts, " "),
			file:  f,
			line:  first[f],
		})
	}
	return items
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | %s", m.lastUpdate.Format("15:04:05"), m.root))
	if len(m.changed) > 0 {
		status += statusStyle.Render(fmt.Sprintf(" | %d changed", len(m.changed)))
	}

	var summary string
	switch {
	case m.checkErr != nil:
		summary = errorStyle.Render("Check failed: " + m.checkErr.Error())
	case !m.hasReport:
		summary = statusStyle.Render("Running first check...")
	case m.report.Passed:
		summary = successStyle.Render(fmt.Sprintf("Architecture clean | %d files", m.report.FilesAnalyzed))
	default:
		summary = violationStyle.Render(fmt.Sprintf("%d violations | %d files", len(m.report.Violations), m.report.FilesAnalyzed))
	}

	header := fmt.Sprintf("%s\n%s\n%s\n", titleStyle("Layer Guard"), status, summary)
	help := statusStyle.Render("tab: switch panel | o: open in $EDITOR | r: re-run check | q: quit")

	body := m.violationList.View()
	if m.mode == panelFiles {
		body = m.fileList.View()
	}
	if m.jumpStatus != "" {
		body += "\n\n" + m.jumpStatus
	}
	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}
