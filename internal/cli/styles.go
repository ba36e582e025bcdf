package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/taskmatch/internal/observability"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	loadLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	loadMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	loadHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
)

const barWidth = 20

// utilizationBar renders pct (0-100) as a fixed-width bar coloured by load.
func utilizationBar(pct float64) string {
	filled := int(pct / 100 * barWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return loadStyle(pct).Render(bar) + fmt.Sprintf(" %5.1f%%", pct)
}

func loadStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 90:
		return loadHigh
	case pct >= 60:
		return loadMid
	default:
		return loadLow
	}
}

func severityStyle(s observability.AlertSeverity) lipgloss.Style {
	switch s {
	case observability.SeverityHigh:
		return severityHigh
	case observability.SeverityMedium:
		return severityMedium
	default:
		return severityLow
	}
}

func rule() string {
	return mutedStyle.Render(strings.Repeat("─", 60))
}
