// Package recognizer turns speech recognizer output into caption engine updates.
package recognizer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Event is one recognizer hypothesis. A partial event replaces the live
// paragraph; a final event replaces it and then commits it.
type Event struct {
	Text    string
	IsFinal bool
	// CompleteWord marks a partial whose trailing word is already complete.
	CompleteWord bool
	// Err reports a recognizer failure instead of text.
	Err error
}

// Source produces recognizer events until its channel is closed.
type Source interface {
	Start(ctx context.Context) (<-chan Event, error)
	Close() error
}

// Pump drains source into feeder until the channel closes or ctx ends.
// Non-fatal recognizer errors are logged; a fatal one stops the pump and is returned.
func Pump(ctx context.Context, source Source, feeder *Feeder) error {
	events, err := source.Start(ctx)
	if err != nil {
		return fmt.Errorf("start recognizer: %w", err)
	}
	defer source.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				if IsFatal(ev.Err) {
					return ev.Err
				}
				log.Warnf("Recognizer: %v", ev.Err)
				continue
			}
			feeder.Handle(ev)
		}
	}
}
