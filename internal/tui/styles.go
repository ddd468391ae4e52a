package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Caption box in the monitor
	StyleCaption = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)
)

const logoASCII = `
 _                                  _   _             
| |__  _   _ _ __  _ __ ___ __ _ _ _| |_(_) ___  _ __  
| '_ \| | | | '_ \| '__/ __/ _' | '_ \ __| |/ _ \| '_ \ 
| | | | |_| | |_) | | | (_| (_| | |_) | |_| | (_) | | | |
|_| |_|\__, | .__/|_|  \___\__,_| .__/ \__|_|\___/|_| |_|
       |___/|_|                 |_|                      `

// Logo returns the hyprcaption ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
