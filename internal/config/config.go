package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/jdelaire/tgbot/internal/keychain"
)

// EnvPrefix marks environment overrides: TGBOT_BOT_NAME -> bot_name,
// TGBOT_WEBHOOK__ADDR -> webhook.addr.
const EnvPrefix = "TGBOT_"

// ErrNoToken is returned by Validate when no bot token could be found.
var ErrNoToken = errors.New("bot token is not set (use TGBOT_TOKEN, the config file or `tgbot token set`)")

// keychainToken is swapped out in tests.
var keychainToken = keychain.Token

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TGBOT_*). Variables from envFiles (or
// ./.env when none are given) are loaded first; missing env files are
// ignored. When no token is configured, the system keychain is consulted.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Token == "" {
		tok, err := keychainToken()
		if err != nil {
			// Keychain errors are not fatal.
			slog.Debug("keychain lookup failed", "error", err)
		}
		cfg.Token = tok
	}

	return cfg, nil
}

// envKey maps TGBOT_WEBHOOK__ADDR to webhook.addr.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path. The token is
// never written; keep it in the keychain or the environment.
func (c *Config) Save(path string) error {
	out := *c
	out.Token = ""
	data, err := yamlv3.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var validLogFormats = map[LogFormat]bool{
	LogFormatText: true,
	LogFormatJSON: true,
}

// Validate checks that the configuration contains valid values. It does
// not require a token; use RequireToken for commands that talk to the API.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q", c.APIBaseURL)
	}

	if c.MaxUpdateAge < 0 {
		return fmt.Errorf("max_update_age must be non-negative")
	}

	if c.HandlerTimeout < 0 {
		return fmt.Errorf("handler_timeout must be non-negative")
	}

	if c.Commands.File != "" && c.Commands.PollInterval <= 0 {
		return fmt.Errorf("commands.poll_interval must be positive")
	}

	if c.Webhook.Path == "" || !strings.HasPrefix(c.Webhook.Path, "/") {
		return fmt.Errorf("invalid webhook.path %q: must start with /", c.Webhook.Path)
	}

	if _, ok := validLogLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat)
	}

	return nil
}

// RequireToken fails with ErrNoToken when no token was found.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return ErrNoToken
	}
	return nil
}

// NewLogger builds the slog logger described by the config. verbose forces
// debug level.
func (c *Config) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, ok := validLogLevels[strings.ToLower(c.LogLevel)]
	if !ok {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
