package config

import (
	"time"

	"github.com/leonardotrapani/hyprcaption/internal/message"
)

// DefaultConfig mirrors the generated config file.
func DefaultConfig() *Config {
	engine := message.DefaultSettings()
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Caption: CaptionConfig{
			DisplayBudget:    engine.DisplayBudget,
			DequeuePolicy:    string(engine.Policy),
			MaxWordsPerTick:  engine.MaxWordsPerTick,
			LookaheadPadding: engine.LookaheadPadding,
			SoftWordLifetime: engine.SoftLifetime,
			HardWordLifetime: engine.HardLifetime,
			PageContextWords: engine.PageContextWords,
			UsePagePrefix:    engine.UsePagePrefix,
			KeepURLs:         true,
			Capitalize:       true,
		},
		Delivery: DeliveryConfig{
			RateLimit: 1300 * time.Millisecond,
		},
		Transport: TransportConfig{
			Type:       "osc",
			OSCAddress: "127.0.0.1:9000",
		},
		Recognizer: RecognizerConfig{
			Source: "stdin",
			Model:  "whisper-1",
			Chunk:  4 * time.Second,
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        8192,
			Device:            "",
			ChannelBufferSize: 30,
		},
		Notifications: NotificationsConfig{
			Enabled: false,
			Type:    "log",
		},
	}
}
