package tui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	// While typing a filter every key belongs to the list.
	if m.activeList().FilterState() == list.Filtering {
		return m.updateActive(msg)
	}
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.mode == panelViolations {
			m.mode = panelFiles
		} else {
			m.mode = panelViolations
		}
		return m, nil
	case "r":
		if m.recheck == nil {
			return m, nil
		}
		recheck := m.recheck
		return m, func() tea.Msg {
			recheck()
			return nil
		}
	case "o":
		target, ok := m.selectedTarget()
		if !ok {
			m.jumpStatus = statusStyle.Render("No source target available.")
			return m, nil
		}
		return m, jumpToSourceCmd(target)
	}
	return m.updateActive(msg)
}

func (m model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.mode == panelViolations {
		m.violationList, cmd = m.violationList.Update(msg)
	} else {
		m.fileList, cmd = m.fileList.Update(msg)
	}
	return m, cmd
}

func (m model) activeList() list.Model {
	if m.mode == panelFiles {
		return m.fileList
	}
	return m.violationList
}

type sourceTarget struct {
	file string
	line int
}

func (m model) selectedTarget() (sourceTarget, bool) {
	selected, ok := m.activeList().SelectedItem().(item)
	if !ok || selected.file == "" {
		return sourceTarget{}, false
	}
	return sourceTarget{file: filepath.Join(m.root, filepath.FromSlash(selected.file)), line: selected.line}, true
}

func jumpToSourceCmd(target sourceTarget) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	args := []string{target.file}
	if strings.Contains(editor, "vim") || strings.Contains(editor, "nvim") || strings.HasSuffix(editor, "/vi") || editor == "vi" {
		args = []string{fmt.Sprintf("+%d", target.line), target.file}
	}
	cmd := exec.Command(editor, args...)
	label := fmt.Sprintf("%s:%d", target.file, target.line)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return sourceJumpResultMsg{target: label, err: err}
	})
}
