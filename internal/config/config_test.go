package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprcaption/internal/message"
	"github.com/leonardotrapani/hyprcaption/internal/notify"
	"github.com/leonardotrapani/hyprcaption/internal/transport"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "log level", mutate: func(c *Config) { c.General.LogLevel = "loud" }, wantErr: "general.log_level"},
		{name: "display budget", mutate: func(c *Config) { c.Caption.DisplayBudget = 0 }, wantErr: "caption.display_budget"},
		{name: "dequeue policy", mutate: func(c *Config) { c.Caption.DequeuePolicy = "fifo" }, wantErr: "caption.dequeue_policy"},
		{name: "policy any case", mutate: func(c *Config) { c.Caption.DequeuePolicy = "Scrolling" }},
		{name: "max words per tick", mutate: func(c *Config) { c.Caption.MaxWordsPerTick = -1 }, wantErr: "caption.max_words_per_tick"},
		{name: "zero max words per tick", mutate: func(c *Config) { c.Caption.MaxWordsPerTick = 0 }},
		{name: "lookahead padding", mutate: func(c *Config) { c.Caption.LookaheadPadding = -1 }, wantErr: "caption.lookahead_padding"},
		{name: "oversized lookahead padding is allowed", mutate: func(c *Config) { c.Caption.LookaheadPadding = 500 }},
		{name: "page context", mutate: func(c *Config) { c.Caption.PageContextWords = -2 }, wantErr: "caption.page_context_words"},
		{name: "rate limit", mutate: func(c *Config) { c.Delivery.RateLimit = 0 }, wantErr: "delivery.rate_limit"},
		{name: "transport type", mutate: func(c *Config) { c.Transport.Type = "carrier-pigeon" }, wantErr: "transport.type"},
		{name: "osc address", mutate: func(c *Config) { c.Transport.OSCAddress = "localhost" }, wantErr: "transport.osc_address"},
		{name: "osc port", mutate: func(c *Config) { c.Transport.OSCAddress = "127.0.0.1:70000" }, wantErr: "transport.osc_address"},
		{
			name: "websocket url",
			mutate: func(c *Config) {
				c.Transport.Type = transport.TypeWebsocket
				c.Transport.WebsocketURL = "http://localhost:8080"
			},
			wantErr: "transport.websocket_url",
		},
		{
			name: "websocket",
			mutate: func(c *Config) {
				c.Transport.Type = transport.TypeWebsocket
				c.Transport.WebsocketURL = "ws://localhost:8080/caption"
			},
		},
		{name: "console", mutate: func(c *Config) { c.Transport.Type = transport.TypeConsole }},
		{name: "recognizer source", mutate: func(c *Config) { c.Recognizer.Source = "microphone" }, wantErr: "recognizer.source"},
		{name: "no recognizer", mutate: func(c *Config) { c.Recognizer.Source = SourceNone }},
		{
			name: "openai with key",
			mutate: func(c *Config) {
				c.Recognizer.Source = SourceOpenAI
				c.Recognizer.APIKey = "test-key"
			},
		},
		{
			name: "openai language",
			mutate: func(c *Config) {
				c.Recognizer.Source = SourceOpenAI
				c.Recognizer.APIKey = "test-key"
				c.Recognizer.Language = "klingon"
			},
			wantErr: "recognizer.language",
		},
		{
			name: "openai chunk",
			mutate: func(c *Config) {
				c.Recognizer.Source = SourceOpenAI
				c.Recognizer.APIKey = "test-key"
				c.Recognizer.Chunk = 0
			},
			wantErr: "recognizer.chunk",
		},
		{
			name: "openai recording",
			mutate: func(c *Config) {
				c.Recognizer.Source = SourceOpenAI
				c.Recognizer.APIKey = "test-key"
				c.Recording.SampleRate = 0
			},
			wantErr: "recording.sample_rate",
		},
		{name: "recording ignored without audio", mutate: func(c *Config) { c.Recording.SampleRate = 0 }},
		{name: "notifications type", mutate: func(c *Config) { c.Notifications.Type = "invalid" }, wantErr: "notifications.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIKeyFromEnvironment(t *testing.T) {
	c := DefaultConfig()
	c.Recognizer.Source = SourceOpenAI

	t.Setenv("OPENAI_API_KEY", "")
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "API key required") {
		t.Fatalf("Validate() error = %v, want missing key", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-key")
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() with env key: %v", err)
	}
	if got := c.ToWhisperConfig().APIKey; got != "env-key" {
		t.Errorf("APIKey = %q, want env-key", got)
	}

	c.Recognizer.APIKey = "config-key"
	if got := c.ToWhisperConfig().APIKey; got != "config-key" {
		t.Errorf("config key should take precedence, got %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[caption]
  display_budget = 100
  dequeue_policy = "scrolling"
  soft_word_lifetime = "infinite"
  hard_word_lifetime = "1m30s"

[delivery]
  rate_limit = "2s"
`)

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if c.Caption.DisplayBudget != 100 {
		t.Errorf("display_budget = %d, want 100", c.Caption.DisplayBudget)
	}
	if c.Caption.DequeuePolicy != "scrolling" {
		t.Errorf("dequeue_policy = %q, want scrolling", c.Caption.DequeuePolicy)
	}
	if !c.Caption.SoftWordLifetime.IsInfinite() {
		t.Errorf("soft_word_lifetime = %v, want infinite", c.Caption.SoftWordLifetime)
	}
	if d, _ := c.Caption.HardWordLifetime.Duration(); d != 90*time.Second {
		t.Errorf("hard_word_lifetime = %v, want 1m30s", d)
	}
	if c.Delivery.RateLimit != 2*time.Second {
		t.Errorf("rate_limit = %v, want 2s", c.Delivery.RateLimit)
	}

	// Keys absent from the file keep their defaults.
	def := DefaultConfig()
	if c.Caption.LookaheadPadding != def.Caption.LookaheadPadding {
		t.Errorf("lookahead_padding = %d, want default %d", c.Caption.LookaheadPadding, def.Caption.LookaheadPadding)
	}
	if c.Transport != def.Transport {
		t.Errorf("transport = %+v, want defaults %+v", c.Transport, def.Transport)
	}
}

func TestLoadFileEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[caption]\n  display_budget = 100\n")

	t.Setenv("HYPRCAPTION_CAPTION_DISPLAY_BUDGET", "64")
	t.Setenv("HYPRCAPTION_CAPTION_SOFT_WORD_LIFETIME", "never")
	t.Setenv("HYPRCAPTION_TRANSPORT_TYPE", "console")
	t.Setenv("HYPRCAPTION_DELIVERY_RATE_LIMIT", "500ms")

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if c.Caption.DisplayBudget != 64 {
		t.Errorf("display_budget = %d, want env override 64", c.Caption.DisplayBudget)
	}
	if !c.Caption.SoftWordLifetime.IsInfinite() {
		t.Errorf("soft_word_lifetime = %v, want infinite", c.Caption.SoftWordLifetime)
	}
	if c.Transport.Type != transport.TypeConsole {
		t.Errorf("transport.type = %q, want console", c.Transport.Type)
	}
	if c.Delivery.RateLimit != 500*time.Millisecond {
		t.Errorf("rate_limit = %v, want 500ms", c.Delivery.RateLimit)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want ErrConfigNotFound", err)
	}

	path := writeConfig(t, dir, "[caption\ndisplay_budget = ")
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed toml should fail to load")
	}

	path = writeConfig(t, dir, "[caption]\n  soft_word_lifetime = \"soon\"\n")
	if _, err := LoadFile(path); err == nil {
		t.Error("invalid lifetime should fail to load")
	}
}

func TestDefaultTemplateMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveDefaultConfig(path); err != nil {
		t.Fatalf("SaveDefaultConfig() error: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if !reflect.DeepEqual(c, DefaultConfig()) {
		t.Errorf("template config = %+v\nwant %+v", c, DefaultConfig())
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	want := DefaultConfig()
	want.Caption.DisplayBudget = 90
	want.Caption.SoftWordLifetime = message.Infinite()
	want.Transport.Type = transport.TypeWebsocket
	want.Transport.WebsocketURL = "ws://127.0.0.1:8080/caption"
	want.Notifications.Messages.CaptionPaused.Body = "Muted"

	if err := SaveFile(path, want); err != nil {
		t.Fatalf("SaveFile() error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary file should be renamed away, stat err = %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v\nwant %+v", got, want)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Caption.DisplayBudget != DefaultConfig().Caption.DisplayBudget {
		t.Errorf("display_budget = %d, want default", c.Caption.DisplayBudget)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !strings.Contains(string(data), "[caption]") {
		t.Error("default config should contain the caption section")
	}
}

func TestConverters(t *testing.T) {
	c := DefaultConfig()
	c.Caption.DequeuePolicy = "SCROLLING"
	c.Caption.MaxWordsPerTick = 3
	c.Caption.KeepURLs = false
	c.Recording.SampleRate = 48000
	c.Recording.Channels = 2
	c.Recognizer.Chunk = 2 * time.Second

	settings := c.ToQueueSettings()
	if settings.Policy != message.Scrolling {
		t.Errorf("Policy = %q, want scrolling", settings.Policy)
	}
	if settings.MaxWordsPerTick != 3 || settings.DisplayBudget != c.Caption.DisplayBudget {
		t.Errorf("settings = %+v", settings)
	}
	if settings.SoftLifetime != c.Caption.SoftWordLifetime || settings.HardLifetime != c.Caption.HardWordLifetime {
		t.Errorf("lifetimes = %v/%v", settings.SoftLifetime, settings.HardLifetime)
	}

	if opts := c.ToFeederOptions(); opts.KeepURLs || !opts.Capitalize {
		t.Errorf("feeder options = %+v", opts)
	}

	tc := c.ToTransportConfig()
	if tc.Type != transport.TypeOSC || tc.OSCAddress != "127.0.0.1:9000" {
		t.Errorf("transport config = %+v", tc)
	}

	if rc := c.ToRecordingConfig(); rc.SampleRate != 48000 || rc.Channels != 2 || rc.Format != "s16" {
		t.Errorf("recording config = %+v", rc)
	}

	wc := c.ToWhisperConfig()
	if wc.SampleRate != 48000 || wc.Channels != 2 || wc.Chunk != 2*time.Second || wc.Model != "whisper-1" {
		t.Errorf("whisper config = %+v", wc)
	}
}

func TestLogLevel(t *testing.T) {
	c := DefaultConfig()
	c.General.LogLevel = "debug"
	if got := c.LogLevel().String(); got != "debug" {
		t.Errorf("LogLevel() = %q, want debug", got)
	}
	c.General.LogLevel = "nonsense"
	if got := c.LogLevel().String(); got != "info" {
		t.Errorf("LogLevel() fallback = %q, want info", got)
	}
}

func TestMessagesConfigResolve(t *testing.T) {
	m := MessagesConfig{
		CaptionPaused:    MessageConfig{Body: "Muted"},
		RecognizerFailed: MessageConfig{Title: "Oops"},
	}
	resolved := m.Resolve()

	if got := resolved[notify.CaptionPaused]; got.Body != "Muted" || got.Title != "Hyprcaption" {
		t.Errorf("CaptionPaused = %+v", got)
	}
	if got := resolved[notify.RecognizerFailed]; got.Title != "Oops" || got.Body != "Speech recognizer stopped" || !got.IsError {
		t.Errorf("RecognizerFailed = %+v", got)
	}
	if got := resolved[notify.CaptionStarted]; got.Body != "Captions started" {
		t.Errorf("CaptionStarted = %+v", got)
	}
	if len(resolved) != len(notify.MessageDefs) {
		t.Errorf("resolved %d messages, want %d", len(resolved), len(notify.MessageDefs))
	}
}

func TestManagerReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[caption]\n  display_budget = 100\n")

	m, err := NewManagerForFile(path)
	if err != nil {
		t.Fatalf("NewManagerForFile() error: %v", err)
	}

	var oldBudget, newBudget int
	calls := 0
	m.OnChange(func(prev, next *Config) {
		calls++
		oldBudget, newBudget = prev.Caption.DisplayBudget, next.Caption.DisplayBudget
	})

	writeConfig(t, dir, "[caption]\n  display_budget = 80\n")
	if !m.Reload() {
		t.Fatal("Reload() rejected a valid config")
	}
	if calls != 1 || oldBudget != 100 || newBudget != 80 {
		t.Errorf("subscriber calls=%d old=%d new=%d", calls, oldBudget, newBudget)
	}
	if got := m.GetConfig().Caption.DisplayBudget; got != 80 {
		t.Errorf("GetConfig() budget = %d, want 80", got)
	}

	writeConfig(t, dir, "[caption]\n  display_budget = -5\n")
	if m.Reload() {
		t.Fatal("Reload() accepted an invalid config")
	}
	if calls != 1 {
		t.Errorf("subscriber should not run for a rejected config, calls=%d", calls)
	}
	if got := m.GetConfig().Caption.DisplayBudget; got != 80 {
		t.Errorf("rejected reload changed budget to %d", got)
	}
}

func TestManagerGetConfigReturnsCopy(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	m, err := NewManagerForFile(path)
	if err != nil {
		t.Fatalf("NewManagerForFile() error: %v", err)
	}
	m.GetConfig().Caption.DisplayBudget = 1
	if m.GetConfig().Caption.DisplayBudget == 1 {
		t.Error("GetConfig() should return a copy")
	}
}

func TestNewManagerRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[transport]\n  type = \"fax\"\n")
	if _, err := NewManagerForFile(path); err == nil {
		t.Error("invalid initial config should be an error")
	}
}

func TestManagerWatchesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	m, err := NewManagerForFile(path)
	if err != nil {
		t.Fatalf("NewManagerForFile() error: %v", err)
	}

	changed := make(chan int, 16)
	m.OnChange(func(_, next *Config) { changed <- next.Caption.DisplayBudget })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error: %v", err)
	}
	defer m.Stop()

	// Unrelated files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, "[caption]\n  display_budget = 72\n")

	// A write can surface as several events, the first possibly seeing a
	// truncated file.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-changed:
			if got == 72 {
				return
			}
		case <-timeout:
			t.Fatal("config change was not picked up")
		}
	}
}
