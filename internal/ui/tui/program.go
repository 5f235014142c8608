package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Program runs the terminal UI. Send is safe to call from watcher callbacks
// while Run blocks.
type Program struct {
	p *tea.Program
}

// NewProgram builds the UI for root. recheck, when set, is called in the
// background when the user asks for a fresh check.
func NewProgram(root string, recheck func()) *Program {
	return &Program{p: tea.NewProgram(initialModel(root, recheck), tea.WithAltScreen())}
}

func (p *Program) Send(msg ReportMsg) {
	p.p.Send(msg)
}

func (p *Program) Run() error {
	_, err := p.p.Run()
	return err
}

// Quit stops a running program, e.g. on SIGTERM.
func (p *Program) Quit() {
	p.p.Quit()
}
