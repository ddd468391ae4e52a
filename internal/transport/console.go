package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const consoleWidth = 48

// Console draws each caption in a chatbox-sized frame. It backs the preview
// command and is handy for checking settings without a game running.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	box    lipgloss.Style
	typing lipgloss.Style
	hint   lipgloss.Style
}

func NewConsole(w io.Writer) *Console {
	profile := termenv.NewOutput(w).EnvColorProfile()
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))

	return &Console{
		out: w,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#64748B")).
			Padding(0, 1).
			Width(consoleWidth),
		typing: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 1).
			Width(consoleWidth),
		hint: r.NewStyle().
			Foreground(lipgloss.Color("#94A3B8")).
			Italic(true),
	}
}

func (c *Console) Send(text string, composing bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := c.box.Render(text)
	if composing {
		frame = c.typing.Render(text) + "\n" + c.hint.Render("typing...")
	}
	if _, err := fmt.Fprintln(c.out, frame); err != nil {
		return fmt.Errorf("write caption: %w", err)
	}
	return nil
}

func (c *Console) Close() error {
	return nil
}
