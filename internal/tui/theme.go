package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the configure form, the monitor and the console transport look
var (
	ColorPrimary   = lipgloss.Color("#F472B6") // Pink - main accent
	ColorSecondary = lipgloss.Color("#38BDF8") // Sky - secondary accent

	ColorSuccess = lipgloss.Color("#22C55E")
	ColorError   = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")

	ColorText   = lipgloss.Color("#F8FAFC")
	ColorMuted  = lipgloss.Color("#94A3B8")
	ColorSubtle = lipgloss.Color("#64748B")
)
