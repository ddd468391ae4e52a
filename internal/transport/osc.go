package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

const (
	chatboxInputAddress  = "/chatbox/input"
	chatboxTypingAddress = "/chatbox/typing"
)

// OSC writes to the VRChat chatbox over UDP.
type OSC struct {
	client *osc.Client
	addr   string
}

// NewOSC targets a host:port address.
func NewOSC(address string) (*OSC, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("invalid osc address %q: %w", address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid osc port %q", portStr)
	}
	return &OSC{client: osc.NewClient(host, port), addr: address}, nil
}

// Send sets the chatbox text immediately without the notification sound. While
// the speaker is still composing, the typing indicator rides along in the same bundle.
func (o *OSC) Send(text string, composing bool) error {
	input := osc.NewMessage(chatboxInputAddress, text, true, false)
	if !composing {
		if err := o.client.Send(input); err != nil {
			return fmt.Errorf("send osc to %s: %w", o.addr, err)
		}
		return nil
	}

	// The zero time encodes the "immediately" time tag.
	bundle := osc.NewBundle(time.Time{})
	if err := bundle.Append(input); err != nil {
		return fmt.Errorf("build osc bundle: %w", err)
	}
	if err := bundle.Append(osc.NewMessage(chatboxTypingAddress, true)); err != nil {
		return fmt.Errorf("build osc bundle: %w", err)
	}
	if err := o.client.Send(bundle); err != nil {
		return fmt.Errorf("send osc to %s: %w", o.addr, err)
	}
	return nil
}

func (o *OSC) Close() error {
	return nil
}
