package tui

import (
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprcaption/internal/config"
)

// editOutput edits the transport and the delivery pacing
func editOutput(cfg *config.Config) error {
	kind := cfg.Transport.Type
	rateLimit := cfg.Delivery.RateLimit.String()

	typeOptions := []huh.Option[string]{
		huh.NewOption("OSC - VRChat chatbox over UDP", "osc"),
		huh.NewOption("WebSocket - JSON push to an overlay", "websocket"),
		huh.NewOption("Console - print captions in this terminal", "console"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transport").
				Description("Where captions are sent").
				Options(typeOptions...).
				Value(&kind),
			huh.NewInput().
				Title("Rate Limit").
				Description("Minimum time between caption updates. VRChat throttles below ~1.3s.").
				Placeholder("1.3s").
				Value(&rateLimit).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transport.Type = kind
	cfg.Delivery.RateLimit = parseDuration(rateLimit)

	switch kind {
	case "osc":
		address := cfg.Transport.OSCAddress
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("OSC Address").
					Description("host:port VRChat listens on").
					Placeholder("127.0.0.1:9000").
					Value(&address).
					Validate(func(s string) error {
						if _, _, err := net.SplitHostPort(s); err != nil {
							return fmt.Errorf("must be host:port")
						}
						return nil
					}),
			),
		).WithTheme(getTheme()).Run()
		if err != nil {
			return err
		}
		cfg.Transport.OSCAddress = address

	case "websocket":
		url := cfg.Transport.WebsocketURL
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("WebSocket URL").
					Placeholder("ws://127.0.0.1:8080/caption").
					Value(&url).
					Validate(func(s string) error {
						if !strings.HasPrefix(s, "ws://") && !strings.HasPrefix(s, "wss://") {
							return fmt.Errorf("must start with ws:// or wss://")
						}
						return nil
					}),
			),
		).WithTheme(getTheme()).Run()
		if err != nil {
			return err
		}
		cfg.Transport.WebsocketURL = url
	}

	return nil
}
