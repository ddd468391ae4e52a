package recognizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprcaption/internal/message"
	"github.com/leonardotrapani/hyprcaption/internal/text"
)

type recordingTarget struct {
	mu        sync.Mutex
	live      []string
	finalized int
}

func (r *recordingTarget) SetLiveParagraph(p text.Paragraph) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live = append(r.live, p.String())
}

func (r *recordingTarget) FinalizeLiveParagraph() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized++
}

func TestFeederHandle(t *testing.T) {
	tests := []struct {
		name          string
		opts          FeederOptions
		event         Event
		wantLive      string
		wantFinalized int
	}{
		{
			name:     "partial drops incomplete word",
			event:    Event{Text: "hello wor"},
			wantLive: "hello ",
		},
		{
			name:     "complete partial keeps last word",
			event:    Event{Text: "hello wor", CompleteWord: true},
			wantLive: "hello wor ",
		},
		{
			name:          "final keeps last word and commits",
			event:         Event{Text: "hello world", IsFinal: true},
			wantLive:      "hello world ",
			wantFinalized: 1,
		},
		{
			name:          "capitalize",
			opts:          FeederOptions{Capitalize: true},
			event:         Event{Text: "HELLO. i am here", IsFinal: true},
			wantLive:      "Hello. I am here ",
			wantFinalized: 1,
		},
		{
			name:          "empty final",
			event:         Event{Text: "  ", IsFinal: true},
			wantLive:      "",
			wantFinalized: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &recordingTarget{}
			NewFeeder(target, tt.opts).Handle(tt.event)

			if len(target.live) != 1 || target.live[0] != tt.wantLive {
				t.Errorf("live paragraphs = %q, want [%q]", target.live, tt.wantLive)
			}
			if target.finalized != tt.wantFinalized {
				t.Errorf("finalized %d times, want %d", target.finalized, tt.wantFinalized)
			}
		})
	}
}

func TestFeederDrivesQueue(t *testing.T) {
	settings := message.DefaultSettings()
	settings.SoftLifetime = message.Infinite()
	settings.HardLifetime = message.Infinite()
	q := message.New(settings)
	f := NewFeeder(q, FeederOptions{Capitalize: true, KeepURLs: true})

	f.Handle(Event{Text: "testing the qu"})
	if got := q.Render(); got != "Testing the" {
		t.Fatalf("partial render = %q", got)
	}

	f.Handle(Event{Text: "testing the queue system", IsFinal: true})
	if got := q.Render(); got != "Testing the queue system" {
		t.Fatalf("final render = %q", got)
	}
	if !q.Finished() {
		t.Error("queue should be finished after a final event")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		want   Event
		wantOK bool
	}{
		{line: "Hello world.", want: Event{Text: "Hello world.", IsFinal: true}, wantOK: true},
		{line: "  padded  ", want: Event{Text: "padded", IsFinal: true}, wantOK: true},
		{line: "~ hello wo", want: Event{Text: "hello wo"}, wantOK: true},
		{line: "~ hello \r", want: Event{Text: "hello "}, wantOK: true},
		{line: "~ ", wantOK: false},
		{line: "", wantOK: false},
		{line: "   ", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		if ok != tt.wantOK {
			t.Errorf("ParseLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestLineSource(t *testing.T) {
	input := "~ hello wo\n~ hello world \n\nHello world.\n"
	src := NewLineSource(strings.NewReader(input))

	events, err := src.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer src.Close()

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}

	want := []Event{
		{Text: "hello wo"},
		{Text: "hello world "},
		{Text: "Hello world.", IsFinal: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if _, err := src.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}
}

type staticSource struct {
	events []Event
	closed bool
}

func (s *staticSource) Start(context.Context) (<-chan Event, error) {
	ch := make(chan Event, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (s *staticSource) Close() error {
	s.closed = true
	return nil
}

func TestPump(t *testing.T) {
	target := &recordingTarget{}
	src := &staticSource{events: []Event{
		{Text: "one two "},
		{Err: errors.New("transient")},
		{Text: "one two three", IsFinal: true},
	}}

	if err := Pump(context.Background(), src, NewFeeder(target, FeederOptions{})); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	if !src.closed {
		t.Error("Pump should close the source")
	}
	if len(target.live) != 2 || target.finalized != 1 {
		t.Errorf("live = %q, finalized = %d", target.live, target.finalized)
	}
}

func TestPumpStopsOnFatal(t *testing.T) {
	target := &recordingTarget{}
	fatal := NewFatalError(errors.New("401 unauthorized"))
	src := &staticSource{events: []Event{
		{Err: fatal},
		{Text: "never seen", IsFinal: true},
	}}

	err := Pump(context.Background(), src, NewFeeder(target, FeederOptions{}))
	if !IsFatal(err) {
		t.Fatalf("Pump() error = %v, want fatal", err)
	}
	if len(target.live) != 0 {
		t.Errorf("events after a fatal error should not be applied: %q", target.live)
	}
}

func TestFatalError(t *testing.T) {
	if NewFatalError(nil) != nil {
		t.Error("NewFatalError(nil) should be nil")
	}
	base := errors.New("forbidden")
	err := NewFatalError(base)
	if !errors.Is(err, base) {
		t.Error("fatal error should unwrap to its cause")
	}
	if IsFatal(base) {
		t.Error("plain error is not fatal")
	}
	if !IsFatal(errors.Join(errors.New("context"), err)) {
		t.Error("wrapped fatal error should be detected")
	}
}

func TestPumpHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &blockingSource{ch: make(chan Event)}

	done := make(chan error, 1)
	go func() { done <- Pump(ctx, src, NewFeeder(&recordingTarget{}, FeederOptions{})) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Pump() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Pump did not return after cancel")
	}
}

type blockingSource struct {
	ch chan Event
}

func (s *blockingSource) Start(context.Context) (<-chan Event, error) { return s.ch, nil }
func (s *blockingSource) Close() error                                { return nil }
