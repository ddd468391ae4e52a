package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

var ErrConfigNotFound = errors.New("config not found")

// EnvPrefix prefixes every environment override, e.g. HYPRCAPTION_CAPTION_DISPLAY_BUDGET.
const EnvPrefix = "HYPRCAPTION_"

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "hyprcaption")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// Load reads the user config file, writing the defaults first if it does not exist yet.
func Load() (*Config, error) {
	configPath, err := ensureConfigFile()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

func ensureConfigFile() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		log.Infof("Config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(configPath); err != nil {
			return "", fmt.Errorf("failed to create default config: %w", err)
		}
	}
	return configPath, nil
}

// LoadFile decodes path on top of the defaults, so keys missing from the file
// keep their default value, then applies .env and environment overrides.
func LoadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Debugf("Config: loading configuration from %s", configPath)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Config: ignoring unknown keys %v", undecoded)
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	log.Debugf("Config: configuration loaded successfully")
	return config, nil
}

func applyEnv(config *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Config: failed to read .env: %v", err)
	}
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// Save writes config to the user config path, replacing the file atomically.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(configPath, config)
}

func SaveFile(configPath string, config *Config) error {
	var buf bytes.Buffer
	buf.WriteString("# Hyprcaption Configuration\n# Changes are applied immediately without daemon restart.\n\n")
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

func SaveDefaultConfig(configPath string) error {
	if err := os.WriteFile(configPath, []byte(defaultConfigContent), 0600); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}
	return nil
}

const defaultConfigContent = `# Hyprcaption Configuration
# This file is automatically generated with defaults.
# Edit values as needed - changes are applied immediately without daemon restart.
# Any key can also be overridden from the environment, e.g. HYPRCAPTION_CAPTION_DISPLAY_BUDGET=120.

[general]
  log_level = "info"            # "debug", "info", "warn", "error"

# Caption buffering
[caption]
  display_budget = 144          # Maximum caption length in characters (VRChat chatbox limit)
  dequeue_policy = "pagination" # "pagination" replaces the page at once, "scrolling" drops words one by one
  max_words_per_tick = 10       # Scrolling only: soft-expired words removed per update (0 = hard expiry only)
  lookahead_padding = 24        # Room kept free for the sentence still being spoken
  soft_word_lifetime = "5s"     # A word may leave the display after this long ("infinite" to disable)
  hard_word_lifetime = "16s"    # A word must leave the display this long after its soft lifetime
  page_context_words = 1        # Pagination only: words kept from the previous page
  use_page_prefix = false       # Pagination only: prefix a continued page with "-"
  keep_urls = true              # Keep "example.com" together instead of splitting at the dot
  capitalize = true             # Fix sentence-start and "I" capitalization

[delivery]
  rate_limit = "1.3s"           # Minimum time between caption updates

[transport]
  type = "osc"                  # "osc" (VRChat chatbox), "websocket", "console"
  osc_address = "127.0.0.1:9000"
  websocket_url = ""            # e.g. "ws://127.0.0.1:8080/caption"

[recognizer]
  source = "stdin"              # "none", "stdin" (one hypothesis per line, "~ " marks partials), "openai"
  model = "whisper-1"           # OpenAI transcription model
  language = ""                 # Language code, empty for auto-detect
  api_key = ""                  # OpenAI API key (or set OPENAI_API_KEY)
  base_url = ""                 # OpenAI-compatible endpoint override
  chunk = "4s"                  # Audio length per transcription request

[recording]
  sample_rate = 16000           # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1                  # Number of audio channels (1 = mono, 2 = stereo)
  format = "s16"                # Audio format (s16 = 16-bit signed integers)
  buffer_size = 8192            # Internal buffer size in bytes (larger = less CPU, more latency)
  device = ""                   # PipeWire audio device (empty = use default microphone)
  channel_buffer_size = 30      # Audio frame buffer size (frames to buffer)

[notifications]
  enabled = false               # Enable notifications
  type = "log"                  # "desktop", "log", "none"
`
