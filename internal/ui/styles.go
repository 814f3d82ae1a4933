package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - single lime accent over grays.
const (
	ColorLime     = "154" // Primary accent - score highlights, headers
	ColorLimeDim  = "106" // Dimmed lime for matched skills
	ColorWhite    = "255" // Candidate headlines
	ColorGray     = "245" // Labels, secondary text
	ColorDarkGray = "238" // Separators, evidence text
	ColorRed      = "196" // Errors, no-match banner
	ColorYellow   = "220" // Weak-match banner
)

// Styles holds the style set for result rendering.
type Styles struct {
	Header   lipgloss.Style
	Headline lipgloss.Style
	Score    lipgloss.Style
	Skill    lipgloss.Style
	Label    lipgloss.Style
	Dim      lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Stage    lipgloss.Style
}

// DefaultStyles returns styled components for terminal mode.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Headline: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Score:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Skill:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Stage:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle(),
		Headline: lipgloss.NewStyle(),
		Score:    lipgloss.NewStyle(),
		Skill:    lipgloss.NewStyle(),
		Label:    lipgloss.NewStyle(),
		Dim:      lipgloss.NewStyle(),
		Warning:  lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle(),
		Stage:    lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate style set.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
