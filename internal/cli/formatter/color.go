package formatter

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)

	StyleHighlight = lipgloss.NewStyle().Foreground(ColorFg).Background(ColorHeader)
)

// Dim renders s in the dim style.
func Dim(s string) string {
	return StyleDim.Render(s)
}

// StatusStyle returns the style for an appointment status.
func StatusStyle(s domain.AppointmentStatus) lipgloss.Style {
	switch s {
	case domain.StatusProvisional:
		return StyleYellow
	case domain.StatusConfirmed, domain.StatusReady, domain.StatusDocumentsVerified:
		return StyleGreen
	case domain.StatusRejected, domain.StatusCancelled:
		return StyleRed
	case domain.StatusDocumentsUploading, domain.StatusDocumentsVerifying, domain.StatusDocumentsPartial:
		return StyleBlue
	case domain.StatusInProgress:
		return StylePurple
	case domain.StatusCompleted:
		return StyleDim
	default:
		return StyleDim
	}
}

// StatusLabel renders the canonical status in its color.
func StatusLabel(s domain.AppointmentStatus) string {
	return StatusStyle(s).Render(string(s))
}
