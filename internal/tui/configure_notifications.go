package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprcaption/internal/config"
	"github.com/leonardotrapani/hyprcaption/internal/notify"
)

// editNotifications handles the notifications section edit with type and custom messages
func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" || notifType == "none" {
		notifType = "desktop"
	}

	typeOptions := []huh.Option[string]{
		huh.NewOption("Desktop notifications (notify-send)", "desktop"),
		huh.NewOption("Log to console only", "log"),
	}

	var configureMessages bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Description("Notify when captions start, pause, resume or the recognizer fails").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(typeOptions...).
				Value(&notifType),
			huh.NewConfirm().
				Title("Configure custom notification messages?").
				Affirmative("Yes").
				Negative("No, use defaults").
				Value(&configureMessages),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	if !enabled {
		return nil
	}
	cfg.Notifications.Type = notifType

	if configureMessages {
		return editNotificationMessages(cfg)
	}
	return nil
}

// messageFor returns the config slot for a notification config key, or nil.
func messageFor(m *config.MessagesConfig, configKey string) *config.MessageConfig {
	switch configKey {
	case "caption_started":
		return &m.CaptionStarted
	case "caption_paused":
		return &m.CaptionPaused
	case "caption_resumed":
		return &m.CaptionResumed
	case "config_reloaded":
		return &m.ConfigReloaded
	case "recognizer_failed":
		return &m.RecognizerFailed
	}
	return nil
}

func editNotificationMessages(cfg *config.Config) error {
	for {
		resolved := cfg.Notifications.Messages.Resolve()

		var options []huh.Option[string]
		for _, def := range notify.MessageDefs {
			body := resolved[def.Type].Body
			if len(body) > 30 {
				body = body[:30] + "..."
			}
			options = append(options, huh.NewOption(fmt.Sprintf("%s: %q", def.ConfigKey, body), def.ConfigKey))
		}
		options = append(options, huh.NewOption("Back", "back"))

		var selected string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Notification Messages").
					Description("Select a message to edit").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}
		if selected == "back" {
			return nil
		}

		_ = editSingleMessage(cfg, selected)
	}
}

func editSingleMessage(cfg *config.Config, configKey string) error {
	slot := messageFor(&cfg.Notifications.Messages, configKey)
	if slot == nil {
		return fmt.Errorf("unknown notification %q", configKey)
	}
	var def notify.MessageDef
	for _, d := range notify.MessageDefs {
		if d.ConfigKey == configKey {
			def = d
		}
	}

	title, body := slot.Title, slot.Body
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description(fmt.Sprintf("Default: %s", def.DefaultTitle)).
				Placeholder(def.DefaultTitle).
				Value(&title),
			huh.NewInput().
				Title("Body").
				Description(fmt.Sprintf("Default: %s", def.DefaultBody)).
				Placeholder(def.DefaultBody).
				Value(&body),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	*slot = config.MessageConfig{Title: title, Body: body}
	return nil
}
