package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/leonardotrapani/hyprcaption/internal/message"
	"github.com/leonardotrapani/hyprcaption/internal/notify"
	"github.com/leonardotrapani/hyprcaption/internal/recognizer"
	"github.com/leonardotrapani/hyprcaption/internal/recording"
	"github.com/leonardotrapani/hyprcaption/internal/transport"
)

// providerEnv holds the provider variables read without the HYPRCAPTION_ prefix.
type providerEnv struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
}

func (c *Config) ToQueueSettings() message.Settings {
	policy, err := message.ParsePolicyKind(c.Caption.DequeuePolicy)
	if err != nil {
		policy = message.Pagination
	}
	return message.Settings{
		DisplayBudget:    c.Caption.DisplayBudget,
		Policy:           policy,
		MaxWordsPerTick:  c.Caption.MaxWordsPerTick,
		LookaheadPadding: c.Caption.LookaheadPadding,
		SoftLifetime:     c.Caption.SoftWordLifetime,
		HardLifetime:     c.Caption.HardWordLifetime,
		PageContextWords: c.Caption.PageContextWords,
		UsePagePrefix:    c.Caption.UsePagePrefix,
	}
}

func (c *Config) ToFeederOptions() recognizer.FeederOptions {
	return recognizer.FeederOptions{
		Capitalize: c.Caption.Capitalize,
		KeepURLs:   c.Caption.KeepURLs,
	}
}

func (c *Config) ToTransportConfig() transport.Config {
	return transport.Config{
		Type:         c.Transport.Type,
		OSCAddress:   c.Transport.OSCAddress,
		WebsocketURL: c.Transport.WebsocketURL,
	}
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

func (c *Config) ToWhisperConfig() recognizer.WhisperConfig {
	return recognizer.WhisperConfig{
		APIKey:     c.resolveAPIKey(),
		Model:      c.Recognizer.Model,
		Language:   c.Recognizer.Language,
		BaseURL:    c.Recognizer.BaseURL,
		Chunk:      c.Recognizer.Chunk,
		SampleRate: c.Recording.SampleRate,
		Channels:   c.Recording.Channels,
	}
}

func (c *Config) ToNotifier() notify.Notifier {
	return notify.New(c.Notifications.Enabled, c.Notifications.Type, c.Notifications.Messages.Resolve())
}

// LogLevel falls back to info for an unparseable level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.General.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// resolveAPIKey prefers recognizer.api_key, then OPENAI_API_KEY.
func (c *Config) resolveAPIKey() string {
	if c.Recognizer.APIKey != "" {
		return c.Recognizer.APIKey
	}
	vars, err := env.ParseAs[providerEnv]()
	if err != nil {
		return ""
	}
	return vars.OpenAIAPIKey
}
