package recognizer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// PartialPrefix marks a line as a partial hypothesis.
const PartialPrefix = "~ "

// LineSource reads one hypothesis per line. Lines starting with PartialPrefix
// are partial, any other non-blank line is final. It lets an external
// recognizer pipe its output into the daemon.
type LineSource struct {
	r io.Reader

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r}
}

func (s *LineSource) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil, errors.New("line source already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	events := make(chan Event, 16)
	go s.read(ctx, events)
	return events, nil
}

func (s *LineSource) read(ctx context.Context, events chan<- Event) {
	defer close(events)

	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		ev, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case events <- Event{Err: fmt.Errorf("read recognizer input: %w", err)}:
		case <-ctx.Done():
		}
	}
}

// ParseLine converts one input line into an event. Blank lines yield false.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r")
	if partial, ok := strings.CutPrefix(line, PartialPrefix); ok {
		if strings.TrimSpace(partial) == "" {
			return Event{}, false
		}
		return Event{Text: partial}, true
	}
	if strings.TrimSpace(line) == "" {
		return Event{}, false
	}
	return Event{Text: strings.TrimSpace(line), IsFinal: true}, true
}

// Close stops delivering events. A read already blocked on the input returns
// once the input yields or closes.
func (s *LineSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
