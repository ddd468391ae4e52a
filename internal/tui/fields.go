package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leonardotrapani/hyprcaption/internal/config"
	"github.com/leonardotrapani/hyprcaption/internal/language"
	"github.com/leonardotrapani/hyprcaption/internal/message"
)

// Form inputs are strings; these validate them and convert them back.

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a duration like 1.3s or 500ms")
	}
	if d <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func validateLifetime(s string) error {
	var l message.Lifetime
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("must be a duration like 5s, or infinite")
	}
	return nil
}

func validateLanguage(s string) error {
	if !language.IsValidCode(language.Normalize(s)) {
		return fmt.Errorf("unknown language code %q", s)
	}
	return nil
}

// atoi and parseDuration assume the input already passed validation.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(strings.TrimSpace(s))
	return d
}

func parseLifetime(s string) message.Lifetime {
	var l message.Lifetime
	_ = l.UnmarshalText([]byte(s))
	return l
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func formatCaptionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Caption (%d chars, %s)", cfg.Caption.DisplayBudget, cfg.Caption.DequeuePolicy)
}

func formatOutputLabel(cfg *config.Config) string {
	target := cfg.Transport.OSCAddress
	switch cfg.Transport.Type {
	case "websocket":
		target = cfg.Transport.WebsocketURL
	case "console":
		target = "terminal"
	}
	return fmt.Sprintf("Output (%s → %s, every %s)", cfg.Transport.Type, target, cfg.Delivery.RateLimit)
}

func formatRecognizerLabel(cfg *config.Config) string {
	if cfg.Recognizer.Source != config.SourceOpenAI {
		return fmt.Sprintf("Recognizer (%s)", cfg.Recognizer.Source)
	}
	return fmt.Sprintf("Recognizer (openai %s, %s)", cfg.Recognizer.Model, language.Name(cfg.Recognizer.Language))
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (disabled)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

// summaryLines lists the settings shown before saving as label/value pairs.
func summaryLines(cfg *config.Config) [][2]string {
	lines := [][2]string{
		{"Caption:", fmt.Sprintf("%d chars, %s", cfg.Caption.DisplayBudget, cfg.Caption.DequeuePolicy)},
		{"Word lifetime:", fmt.Sprintf("soft %s, hard %s", cfg.Caption.SoftWordLifetime, cfg.Caption.HardWordLifetime)},
		{"Transport:", strings.TrimPrefix(formatOutputLabel(cfg), "Output ")},
		{"Recognizer:", cfg.Recognizer.Source},
	}
	if cfg.Recognizer.Source == config.SourceOpenAI {
		lines = append(lines,
			[2]string{"Model:", cfg.Recognizer.Model},
			[2]string{"Language:", language.Name(cfg.Recognizer.Language)},
			[2]string{"API key:", maskAPIKey(cfg.Recognizer.APIKey)},
		)
	}
	notifications := "disabled"
	if cfg.Notifications.Enabled {
		notifications = cfg.Notifications.Type
	}
	return append(lines, [2]string{"Notifications:", notifications})
}
