package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Semantic colors for readings
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")

	// Graph colors
	ColorDownload = lipgloss.Color("#00FFFF")
	ColorUpload   = lipgloss.Color("#BF40FF")
)

// Latency thresholds in milliseconds.
const (
	LatencyWarning  = 80.0
	LatencyCritical = 200.0
)

// Signal thresholds in dBm. Anything at or below SignalCritical is unusable.
const (
	SignalWarning  = -70
	SignalCritical = -90
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)
)

// Status indicator characters
const (
	StatusOnline  = "◉"
	StatusWeak    = "◔"
	StatusOffline = "◌"
)

// SpinnerFrames animate the speed test while it runs.
var SpinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// LatencyColor grades a round-trip time. A lost probe is critical.
func LatencyColor(ms, loss float64) lipgloss.Color {
	switch {
	case loss >= 100 || ms >= LatencyCritical:
		return ColorCritical
	case loss > 0 || ms >= LatencyWarning:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// LossColor grades a packet loss percentage.
func LossColor(loss float64) lipgloss.Color {
	switch {
	case loss >= 50:
		return ColorCritical
	case loss > 0:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// SignalColor grades an RSSI reading. Zero means no reading.
func SignalColor(rssi int) lipgloss.Color {
	switch {
	case rssi == 0:
		return ColorWarning
	case rssi <= SignalCritical:
		return ColorCritical
	case rssi <= SignalWarning:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// SignalQuality maps RSSI onto 0-100 (-100 dBm and below is 0, -50 and
// above is 100).
func SignalQuality(rssi int) float64 {
	if rssi == 0 {
		return 0
	}
	q := 2 * float64(rssi+100)
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// Left: "╭─ " + title + " "; right: " " + value + " ╮"
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorDownload).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	// "│ " on the left and " │" on the right
	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
