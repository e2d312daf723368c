package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/reporter"
)

// Desert palette.
var (
	ColorSpice = lipgloss.Color("#D97706")
	ColorSky   = lipgloss.Color("#38BDF8")
	ColorBlood = lipgloss.Color("#DC2626")
	ColorSand  = lipgloss.Color("#FBBF24")
	ColorOasis = lipgloss.Color("#34D399")
	ColorDust  = lipgloss.Color("#78716C")
	ColorFg    = lipgloss.Color("#E7E5E4")
	ColorDune  = lipgloss.Color("#FDE68A")
	ColorNight = lipgloss.Color("#292524")
)

func bold(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func framed(border lipgloss.TerminalColor, vertical, horizontal int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(vertical, horizontal)
}

var (
	TitleStyle     = bold(ColorDune).Background(ColorNight).Padding(0, 2).MarginBottom(1)
	SubtitleStyle  = lipgloss.NewStyle().Foreground(ColorDust).Italic(true)
	StatusBarStyle = lipgloss.NewStyle().Foreground(ColorFg).Background(ColorNight).Padding(0, 1)
	HelpStyle      = lipgloss.NewStyle().Foreground(ColorDust).MarginTop(1)
	SpinnerStyle   = lipgloss.NewStyle().Foreground(ColorSpice)

	InputLabelStyle = bold(ColorSky).MarginRight(1)
	InputStyle      = framed(ColorSpice, 0, 1).MarginTop(1)
	BoxStyle        = framed(ColorSpice, 1, 2).MarginTop(1)

	ActiveFieldStyle   = framed(ColorSpice, 0, 1)
	InactiveFieldStyle = framed(ColorDust, 0, 1)
	PaneStyle          = framed(ColorDust, 0, 1)
	FocusedPaneStyle   = framed(ColorSpice, 0, 1)

	DetailHeaderStyle = bold(ColorDune).MarginBottom(1)
	DetailLabelStyle  = bold(ColorSky)
	DetailValueStyle  = lipgloss.NewStyle().Foreground(ColorFg)

	SevCriticalStyle = bold(lipgloss.Color("#FFFFFF")).Background(ColorBlood).Padding(0, 1)
	SevHighStyle     = bold(ColorBlood)
	SevMediumStyle   = bold(ColorSand)
	SevInfoStyle     = lipgloss.NewStyle().Foreground(ColorSky)

	RemediationStyle = lipgloss.NewStyle().Foreground(ColorOasis)
	SuccessStyle     = bold(ColorOasis)
	ErrorStyle       = bold(ColorBlood)
)

// SeverityStyle styles a reporter severity name.
func SeverityStyle(sev string) lipgloss.Style {
	switch sev {
	case "critical":
		return SevCriticalStyle
	case "high":
		return SevHighStyle
	case "medium":
		return SevMediumStyle
	default:
		return SevInfoStyle
	}
}

// LevelStyle colors a verdict the same way the terminal report does.
func LevelStyle(level analysis.Level) lipgloss.Style {
	return bold(reporter.LevelColor(level))
}
