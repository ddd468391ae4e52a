package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/leonardotrapani/hyprcaption/internal/language"
	"github.com/leonardotrapani/hyprcaption/internal/message"
	"github.com/leonardotrapani/hyprcaption/internal/transport"
)

const (
	SourceNone   = "none"
	SourceStdin  = "stdin"
	SourceOpenAI = "openai"
)

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.General.LogLevel); err != nil {
		return fmt.Errorf("invalid general.log_level: %s (must be debug, info, warn or error)", c.General.LogLevel)
	}

	if err := c.validateCaption(); err != nil {
		return err
	}

	if c.Delivery.RateLimit <= 0 {
		return fmt.Errorf("invalid delivery.rate_limit: %v", c.Delivery.RateLimit)
	}

	if err := c.validateTransport(); err != nil {
		return err
	}

	switch c.Recognizer.Source {
	case SourceNone, SourceStdin:
	case SourceOpenAI:
		if c.resolveAPIKey() == "" {
			return fmt.Errorf("OpenAI API key required: not found in config (recognizer.api_key) or environment variable (OPENAI_API_KEY)")
		}
		if c.Recognizer.Model == "" {
			return fmt.Errorf("invalid recognizer.model: empty")
		}
		if c.Recognizer.Language != "" && !language.IsValidCode(c.Recognizer.Language) {
			return fmt.Errorf("invalid recognizer.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", c.Recognizer.Language)
		}
		if c.Recognizer.Chunk <= 0 {
			return fmt.Errorf("invalid recognizer.chunk: %v", c.Recognizer.Chunk)
		}
		if err := c.validateRecording(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid recognizer.source: %s (must be none, stdin or openai)", c.Recognizer.Source)
	}

	switch c.Notifications.Type {
	case "desktop", "log", "none":
	default:
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log or none)", c.Notifications.Type)
	}

	return nil
}

func (c *Config) validateCaption() error {
	cc := c.Caption
	if cc.DisplayBudget <= 0 {
		return fmt.Errorf("invalid caption.display_budget: %d", cc.DisplayBudget)
	}
	if _, err := message.ParsePolicyKind(cc.DequeuePolicy); err != nil {
		return fmt.Errorf("invalid caption.dequeue_policy: %w", err)
	}
	if cc.MaxWordsPerTick < 0 {
		return fmt.Errorf("invalid caption.max_words_per_tick: %d", cc.MaxWordsPerTick)
	}
	if cc.LookaheadPadding < 0 {
		return fmt.Errorf("invalid caption.lookahead_padding: %d", cc.LookaheadPadding)
	}
	if cc.LookaheadPadding >= cc.DisplayBudget {
		log.Warnf("Config: caption.lookahead_padding %d leaves no room in a %d character caption; it will be ignored",
			cc.LookaheadPadding, cc.DisplayBudget)
	}
	if cc.PageContextWords < 0 {
		return fmt.Errorf("invalid caption.page_context_words: %d", cc.PageContextWords)
	}
	return nil
}

func (c *Config) validateTransport() error {
	switch c.Transport.Type {
	case transport.TypeOSC:
		host, port, err := net.SplitHostPort(c.Transport.OSCAddress)
		if err != nil || host == "" {
			return fmt.Errorf("invalid transport.osc_address: %q (must be host:port)", c.Transport.OSCAddress)
		}
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid transport.osc_address: port %q out of range", port)
		}
	case transport.TypeWebsocket:
		u, err := url.Parse(c.Transport.WebsocketURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return fmt.Errorf("invalid transport.websocket_url: %q (must be ws:// or wss://)", c.Transport.WebsocketURL)
		}
	case transport.TypeConsole:
	default:
		return fmt.Errorf("invalid transport.type: %s (must be osc, websocket or console)", c.Transport.Type)
	}
	return nil
}

func (c *Config) validateRecording() error {
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}
	return nil
}
