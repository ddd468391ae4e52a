package config

import (
	"reflect"
	"time"

	"github.com/leonardotrapani/hyprcaption/internal/message"
	"github.com/leonardotrapani/hyprcaption/internal/notify"
)

// Config is the whole config.toml. The env tags name the HYPRCAPTION_*
// variables that override a loaded file.
type Config struct {
	General       GeneralConfig       `toml:"general" envPrefix:"GENERAL_"`
	Caption       CaptionConfig       `toml:"caption" envPrefix:"CAPTION_"`
	Delivery      DeliveryConfig      `toml:"delivery" envPrefix:"DELIVERY_"`
	Transport     TransportConfig     `toml:"transport" envPrefix:"TRANSPORT_"`
	Recognizer    RecognizerConfig    `toml:"recognizer" envPrefix:"RECOGNIZER_"`
	Recording     RecordingConfig     `toml:"recording" envPrefix:"RECORDING_"`
	Notifications NotificationsConfig `toml:"notifications" envPrefix:"NOTIFICATIONS_"`
}

type GeneralConfig struct {
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"` // "debug", "info", "warn", "error"
}

// CaptionConfig drives the message engine and the text segmenter.
type CaptionConfig struct {
	DisplayBudget    int              `toml:"display_budget" env:"DISPLAY_BUDGET"`
	DequeuePolicy    string           `toml:"dequeue_policy" env:"DEQUEUE_POLICY"`
	MaxWordsPerTick  int              `toml:"max_words_per_tick" env:"MAX_WORDS_PER_TICK"`
	LookaheadPadding int              `toml:"lookahead_padding" env:"LOOKAHEAD_PADDING"`
	SoftWordLifetime message.Lifetime `toml:"soft_word_lifetime" env:"SOFT_WORD_LIFETIME"`
	HardWordLifetime message.Lifetime `toml:"hard_word_lifetime" env:"HARD_WORD_LIFETIME"`
	PageContextWords int              `toml:"page_context_words" env:"PAGE_CONTEXT_WORDS"`
	UsePagePrefix    bool             `toml:"use_page_prefix" env:"USE_PAGE_PREFIX"`
	KeepURLs         bool             `toml:"keep_urls" env:"KEEP_URLS"`
	Capitalize       bool             `toml:"capitalize" env:"CAPITALIZE"`
}

type DeliveryConfig struct {
	RateLimit time.Duration `toml:"rate_limit" env:"RATE_LIMIT"`
}

type TransportConfig struct {
	Type         string `toml:"type" env:"TYPE"` // "osc", "websocket", "console"
	OSCAddress   string `toml:"osc_address" env:"OSC_ADDRESS"`
	WebsocketURL string `toml:"websocket_url" env:"WEBSOCKET_URL"`
}

type RecognizerConfig struct {
	Source   string        `toml:"source" env:"SOURCE"` // "none", "stdin", "openai"
	Model    string        `toml:"model" env:"MODEL"`
	Language string        `toml:"language" env:"LANGUAGE"`
	APIKey   string        `toml:"api_key" env:"API_KEY"`
	BaseURL  string        `toml:"base_url" env:"BASE_URL"`
	Chunk    time.Duration `toml:"chunk" env:"CHUNK"`
}

type RecordingConfig struct {
	SampleRate        int    `toml:"sample_rate" env:"SAMPLE_RATE"`
	Channels          int    `toml:"channels" env:"CHANNELS"`
	Format            string `toml:"format" env:"FORMAT"`
	BufferSize        int    `toml:"buffer_size" env:"BUFFER_SIZE"`
	Device            string `toml:"device" env:"DEVICE"`
	ChannelBufferSize int    `toml:"channel_buffer_size" env:"CHANNEL_BUFFER_SIZE"`
}

type NotificationsConfig struct {
	Enabled  bool           `toml:"enabled" env:"ENABLED"`
	Type     string         `toml:"type" env:"TYPE"` // "desktop", "log", "none"
	Messages MessagesConfig `toml:"messages"`
}

type MessageConfig struct {
	Title string `toml:"title"`
	Body  string `toml:"body"`
}

type MessagesConfig struct {
	CaptionStarted   MessageConfig `toml:"caption_started"`
	CaptionPaused    MessageConfig `toml:"caption_paused"`
	CaptionResumed   MessageConfig `toml:"caption_resumed"`
	ConfigReloaded   MessageConfig `toml:"config_reloaded"`
	RecognizerFailed MessageConfig `toml:"recognizer_failed"`
}

// Resolve merges user config with defaults from MessageDefs
func (m *MessagesConfig) Resolve() map[notify.MessageType]notify.Message {
	result := notify.DefaultMessages()

	v := reflect.ValueOf(m).Elem()
	t := v.Type()
	tagToField := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		tagToField[t.Field(i).Tag.Get("toml")] = i
	}

	for _, def := range notify.MessageDefs {
		idx, ok := tagToField[def.ConfigKey]
		if !ok {
			continue
		}
		msg := result[def.Type]
		userMsg := v.Field(idx).Interface().(MessageConfig)
		if userMsg.Title != "" {
			msg.Title = userMsg.Title
		}
		if userMsg.Body != "" {
			msg.Body = userMsg.Body
		}
		result[def.Type] = msg
	}
	return result
}
