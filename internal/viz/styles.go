package viz

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle      lipgloss.Style
	panelStyle       lipgloss.Style
	headerStyle      lipgloss.Style
	labelStyle       lipgloss.Style
	valueStyle       lipgloss.Style
	activeParamStyle lipgloss.Style
	graphStyle       lipgloss.Style
	helpStyle        lipgloss.Style
	errorStyle       lipgloss.Style
	statusRunning    lipgloss.Style
	statusPaused     lipgloss.Style
	gaugeFull        lipgloss.Style
	gaugeEmpty       lipgloss.Style
	menuSelected     lipgloss.Style
	menuItem         lipgloss.Style
)

func init() {
	applyTheme(CurrentTheme)
}

func applyTheme(t Theme) {
	canvasStyle = lipgloss.NewStyle().Foreground(t.Primary).Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(0, 2).
		Width(panelWidth)
	headerStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(t.Text)
	activeParamStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	graphStyle = lipgloss.NewStyle().Foreground(t.Secondary)
	helpStyle = lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1)
	errorStyle = lipgloss.NewStyle().Foreground(t.Error)
	statusRunning = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	statusPaused = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	gaugeFull = lipgloss.NewStyle().Foreground(t.Secondary)
	gaugeEmpty = lipgloss.NewStyle().Foreground(t.Muted)
	menuSelected = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	menuItem = lipgloss.NewStyle().Foreground(t.Text)
}
