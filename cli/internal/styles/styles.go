// ABOUTME: Shared lipgloss styles for CLI output
// ABOUTME: Defines colors and status indicators used across commands

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("#7C3AED") // Purple
	Good    = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Danger  = lipgloss.Color("#EF4444") // Red
	Muted   = lipgloss.Color("#6B7280") // Gray

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(Muted)

	StatusOK = lipgloss.NewStyle().
			Foreground(Good).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)
)

// Status renders a status word in the color matching its severity.
func Status(s string) string {
	switch s {
	case "ok", "verified":
		return StatusOK.Render(s)
	case "degraded":
		return StatusWarning.Render(s)
	default:
		return StatusCritical.Render(s)
	}
}
