package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name string
		line string
		want map[string]string
	}{
		{
			name: "plain",
			line: "STATUS running=true policy=pagination staged=2",
			want: map[string]string{"running": "true", "policy": "pagination", "staged": "2"},
		},
		{
			name: "quoted values",
			line: `STATUS sent=1,204 last="3 seconds ago" text="say \"hi\" now"`,
			want: map[string]string{"sent": "1,204", "last": "3 seconds ago", "text": `say "hi" now`},
		},
		{
			name: "trailing newline",
			line: "STATUS proto=0.1\n",
			want: map[string]string{"proto": "0.1"},
		},
		{
			name: "empty quoted",
			line: `STATUS text="" failed=0`,
			want: map[string]string{"text": "", "failed": "0"},
		},
		{
			name: "unterminated quote",
			line: `STATUS last="never`,
			want: map[string]string{"last": "never"},
		},
		{
			name: "no fields",
			line: "STATUS",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStatus(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseStatus() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("field %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestMonitorPollsStatus(t *testing.T) {
	fetch := func() (string, error) {
		return `STATUS running=true policy=scrolling staged=3 text="hello there"`, nil
	}
	m := newMonitorModel(fetch, 10*time.Millisecond)

	msg := m.poll(true)()
	updated, cmd := m.Update(msg)
	m = updated.(monitorModel)

	if cmd == nil {
		t.Error("expected a tick to be scheduled after a ticked poll")
	}
	if m.fields["policy"] != "scrolling" {
		t.Errorf("policy = %q, want scrolling", m.fields["policy"])
	}

	view := m.View()
	for _, want := range []string{"Delivering", "scrolling", "hello there"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMonitorManualRefreshDoesNotTick(t *testing.T) {
	m := newMonitorModel(func() (string, error) { return "STATUS running=false", nil }, time.Second)

	updated, cmd := m.Update(m.poll(false)())
	m = updated.(monitorModel)
	if cmd != nil {
		t.Error("manual refresh should not schedule a tick")
	}
	if m.fields["running"] != "false" {
		t.Errorf("running = %q, want false", m.fields["running"])
	}
}

func TestMonitorKeepsFieldsOnError(t *testing.T) {
	m := newMonitorModel(nil, time.Second)
	m.fields = map[string]string{"policy": "pagination"}

	updated, _ := m.Update(statusMsg{err: errors.New("connection refused"), ticked: true})
	m = updated.(monitorModel)

	if m.fields["policy"] != "pagination" {
		t.Error("previous fields should survive a failed poll")
	}
	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("view should report the error:\n%s", m.View())
	}
}

func TestMonitorQuit(t *testing.T) {
	m := newMonitorModel(nil, time.Second)

	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("key %q: expected quit command", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %q: expected tea.QuitMsg", k.String())
		}
	}
}

func TestMonitorWindowSize(t *testing.T) {
	m := newMonitorModel(nil, time.Second)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(monitorModel)
	if m.width != 80 || m.help.Width != 80 {
		t.Errorf("width = %d, help width = %d, want 80", m.width, m.help.Width)
	}
}
