package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"layerguard/internal/core/app"
	"layerguard/internal/engine/rules"
)

var (
	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	positionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	countsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// Pretty groups violations by file and adds per-rule counts. Colors are
// dropped automatically when the output is not a terminal.
func Pretty(r app.Report) string {
	var b strings.Builder
	current := ""
	for _, v := range r.Violations {
		if v.File != current {
			if current != "" {
				b.WriteByte('\n')
			}
			current = v.File
			b.WriteString(fileStyle.Render(v.File))
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %s  %s %s\n",
			positionStyle.Render(fmt.Sprintf("%d:%d", v.Line, v.Column)),
			v.Message,
			ruleStyle.Render(v.RuleID))
	}
	if len(r.Violations) > 0 {
		b.WriteByte('\n')
	}

	if r.Passed {
		b.WriteString(passStyle.Render(Summary(r)))
	} else {
		b.WriteString(failStyle.Render(Summary(r)))
		b.WriteByte('\n')
		b.WriteString(countsStyle.Render(ruleCounts(r)))
	}
	b.WriteByte('\n')
	return b.String()
}

func ruleCounts(r app.Report) string {
	parts := make([]string, 0, len(rules.Catalog))
	for _, d := range rules.Catalog {
		if n := r.RuleCounts[d.ID]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", d.ID, n))
		}
	}
	return strings.Join(parts, " | ")
}
