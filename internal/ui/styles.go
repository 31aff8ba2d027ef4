package ui

import (
	"deepcut/internal/events"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stateStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	severityStyles = map[events.Severity]lipgloss.Style{
		events.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		events.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		events.SeverityWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		events.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		events.SeverityDetail:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
)

// RenderLog styles a log line by severity.
func RenderLog(l events.LogEvent) string {
	style, ok := severityStyles[l.Severity]
	if !ok {
		style = severityStyles[events.SeverityInfo]
	}
	return labelStyle.Render(l.Time.Format("15:04:05")) + " " + style.Render(l.Message)
}
