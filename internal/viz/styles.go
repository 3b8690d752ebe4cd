package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/robonav/internal/logbuf"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(panelWidth)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	statusMoving  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	statusArrived = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))

	logPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	levelStyles = map[string]lipgloss.Style{
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

// renderLogs draws the newest entries that fit in width, oldest on top.
func renderLogs(entries []logbuf.Entry, width int) string {
	if len(entries) == 0 {
		return logPaneStyle.Width(width).Render(labelStyle.Render("(no log entries)"))
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := e.String()
		if limit := width - 4; limit > 0 && len(line) > limit {
			line = line[:limit]
		}
		style, ok := levelStyles[e.Level]
		if !ok {
			style = valueStyle
		}
		lines = append(lines, style.Render(line))
	}
	return logPaneStyle.Width(width).Render(strings.Join(lines, "\n"))
}
