// Package transport ships rendered captions to their destination.
package transport

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	TypeOSC       = "osc"
	TypeWebsocket = "websocket"
	TypeConsole   = "console"
)

var ErrUnknownType = errors.New("unknown transport type")

// Transport delivers one caption per call. Sends are never retried by the
// caller; the next caption supersedes a failed one.
type Transport interface {
	Send(text string, composing bool) error
	Close() error
}

type Config struct {
	Type         string
	OSCAddress   string
	WebsocketURL string
	// Output is where the console transport writes; nil means stdout.
	Output io.Writer
}

func New(config Config) (Transport, error) {
	switch config.Type {
	case TypeOSC:
		return NewOSC(config.OSCAddress)
	case TypeWebsocket:
		return NewWebsocket(config.WebsocketURL)
	case TypeConsole:
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		return NewConsole(out), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, config.Type)
	}
}
