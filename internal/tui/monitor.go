package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusFunc fetches one STATUS reply line from the daemon.
type StatusFunc func() (string, error)

// statusMsg carries one poll result. Only polls started by the tick chain
// schedule the next tick, so manual refreshes don't multiply it.
type statusMsg struct {
	fields map[string]string
	err    error
	ticked bool
}

type tickMsg time.Time

// monitorFields is the display order of the status keys.
var monitorFields = []struct{ key, label string }{
	{"running", "Delivering"},
	{"policy", "Policy"},
	{"staged", "Staged words"},
	{"backlog", "Backlog"},
	{"length", "Length"},
	{"sent", "Sent"},
	{"failed", "Failed"},
	{"last", "Last sent"},
}

var (
	keyQuit    = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))
	keyRefresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

type monitorModel struct {
	fetch    StatusFunc
	interval time.Duration
	fields   map[string]string
	err      error
	width    int
	spinner  spinner.Model
	help     help.Model
}

func newMonitorModel(fetch StatusFunc, interval time.Duration) monitorModel {
	if interval <= 0 {
		interval = time.Second
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)
	return monitorModel{
		fetch:    fetch,
		interval: interval,
		spinner:  sp,
		help:     help.New(),
	}
}

// RunMonitor shows a live view of the daemon status until the user quits.
func RunMonitor(fetch StatusFunc, interval time.Duration) error {
	_, err := tea.NewProgram(newMonitorModel(fetch, interval)).Run()
	return err
}

func (m monitorModel) poll(ticked bool) tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		line, err := fetch()
		if err != nil {
			return statusMsg{err: err, ticked: ticked}
		}
		return statusMsg{fields: ParseStatus(line), ticked: ticked}
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.poll(true), m.spinner.Tick)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyQuit):
			return m, tea.Quit
		case key.Matches(msg, keyRefresh):
			return m, m.poll(false)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.fields = msg.fields
		}
		if !msg.ticked {
			return m, nil
		}
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
	case tickMsg:
		return m, m.poll(true)
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render("hyprcaption monitor"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(StyleError.Render("Daemon unreachable: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.fields != nil {
		for _, f := range monitorFields {
			value, ok := m.fields[f.key]
			if !ok {
				continue
			}
			style := lipgloss.NewStyle()
			if f.key == "running" {
				style = StyleSuccess
				if value != "true" {
					style = StyleWarning
				}
			}
			fmt.Fprintf(&b, "  %s %s\n", StyleLabel.Render(fmt.Sprintf("%-13s", f.label+":")), style.Render(value))
		}

		if text := m.fields["text"]; text != "" {
			box := StyleCaption
			if m.width > 4 {
				box = box.Width(min(m.width-4, 48))
			} else {
				box = box.Width(48)
			}
			b.WriteString("\n")
			b.WriteString(box.Render(text))
			b.WriteString("\n")
		}
	} else if m.err == nil {
		b.WriteString("  " + m.spinner.View() + StyleMuted.Render(" waiting for status..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{keyRefresh, keyQuit}))
	return b.String()
}

// ParseStatus reads a "STATUS key=value ..." line. Values may be Go-quoted
// strings containing spaces.
func ParseStatus(line string) map[string]string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "STATUS")

	fields := make(map[string]string)
	for {
		line = strings.TrimLeft(line, " ")
		if line == "" {
			return fields
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			return fields
		}
		name := line[:eq]
		line = line[eq+1:]

		if strings.HasPrefix(line, `"`) {
			end := closingQuote(line)
			if end < 0 {
				fields[name] = strings.Trim(line, `"`)
				return fields
			}
			value, err := strconv.Unquote(line[:end+1])
			if err != nil {
				value = line[1:end]
			}
			fields[name] = value
			line = line[end+1:]
			continue
		}

		end := strings.IndexByte(line, ' ')
		if end < 0 {
			fields[name] = line
			return fields
		}
		fields[name] = line[:end]
		line = line[end:]
	}
}

// closingQuote returns the index of the quote ending s[0]'s quoted string.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
