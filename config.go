package parley

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Router backends.
const (
	BackendAuto      = "auto"
	BackendKeyword   = "keyword"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

// Config is the complete runtime configuration. Values come from
// DefaultConfig, then the YAML file, then the environment.
type Config struct {
	Script   string         `yaml:"script" env:"PARLEY_SCRIPT"`
	Router   RouterConfig   `yaml:"router"`
	Replies  RepliesConfig  `yaml:"replies"`
	Serve    ServeConfig    `yaml:"serve"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

// RouterConfig selects and tunes the intent router.
type RouterConfig struct {
	// Backend is auto, keyword, openai or anthropic. Auto uses OpenAI when
	// an OpenAI key is configured and keywords otherwise.
	Backend string `yaml:"backend" env:"PARLEY_ROUTER"`
	Model   string `yaml:"model" env:"PARLEY_ROUTER_MODEL"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`

	OpenAIKey    string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	AnthropicKey string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`

	// KeywordsFile replaces the built-in keyword table.
	KeywordsFile string        `yaml:"keywords_file" env:"PARLEY_KEYWORDS"`
	Timeout      time.Duration `yaml:"timeout" env:"PARLEY_ROUTER_TIMEOUT"`
	CacheSize    int           `yaml:"cache_size" env:"PARLEY_ROUTER_CACHE"`
}

// RepliesConfig overrides the interpreter's fixed fallback replies.
type RepliesConfig struct {
	UndefinedIntent string `yaml:"undefined_intent"`
	NoMatch         string `yaml:"no_match"`
}

// ServeConfig configures the HTTP service.
type ServeConfig struct {
	Addr         string        `yaml:"addr" env:"PARLEY_ADDR"`
	DBPath       string        `yaml:"db_path" env:"PARLEY_DB"`
	SessionTTL   time.Duration `yaml:"session_ttl" env:"PARLEY_SESSION_TTL"`
	ReapSchedule string        `yaml:"reap_schedule" env:"PARLEY_REAP_SCHEDULE"`
	Watch        bool          `yaml:"watch" env:"PARLEY_WATCH"`
}

// TelegramConfig enables the Telegram front end when Token is set.
type TelegramConfig struct {
	Token string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"PARLEY_LOG_LEVEL"`
	Format string `yaml:"format" env:"PARLEY_LOG_FORMAT"` // text or json
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Router: RouterConfig{
			Backend:   BackendAuto,
			Timeout:   20 * time.Second,
			CacheSize: 1024,
		},
		Serve: ServeConfig{
			Addr:         ":3001",
			DBPath:       DefaultDBPath(),
			SessionTTL:   30 * time.Minute,
			ReapSchedule: "@every 1m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration. An empty path means the default
// config file, which may be absent; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	optional := path == ""
	if optional {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Router.Backend {
	case BackendAuto, BackendKeyword, BackendOpenAI, BackendAnthropic:
	default:
		return fmt.Errorf("%w: router backend %q (want auto, keyword, openai or anthropic)", ErrInvalidInput, c.Router.Backend)
	}
	if c.Router.Timeout < 0 {
		return fmt.Errorf("%w: router timeout %v", ErrInvalidInput, c.Router.Timeout)
	}
	if c.Serve.SessionTTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalidInput)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q (want text or json)", ErrInvalidInput, c.Log.Format)
	}
	return nil
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidInput, s)
	}
	return level, nil
}
