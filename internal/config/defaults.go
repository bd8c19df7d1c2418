package config

import (
	"time"

	"github.com/jdelaire/tgbot/core"
	"github.com/jdelaire/tgbot/core/api"
	"github.com/jdelaire/tgbot/core/policy"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "tgbot.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:    api.DefaultBaseURL,
		ButtonCaption: core.DefaultButtonCaption,
		MaxUpdateAge:  policy.DefaultFreshness,
		Commands: CommandsConfig{
			PollInterval: 2 * time.Second,
		},
		Webhook: WebhookConfig{
			Addr: ":8080",
			Path: "/webhook",
		},
		LogLevel:  "info",
		LogFormat: LogFormatText,
	}
}
