package config

import "time"

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config is the top-level tgbot configuration, corresponding to tgbot.yml.
type Config struct {
	// Token is normally kept out of the file; see Load for the lookup order.
	Token      string `yaml:"token,omitempty" koanf:"token"`
	BotName    string `yaml:"bot_name" koanf:"bot_name"`
	APIBaseURL string `yaml:"api_base_url" koanf:"api_base_url"`

	// AllowedChats restricts the bot to these chats; empty allows all.
	AllowedChats []int64       `yaml:"allowed_chats,omitempty" koanf:"allowed_chats"`
	MaxUpdateAge time.Duration `yaml:"max_update_age" koanf:"max_update_age"`

	HandlerTimeout time.Duration `yaml:"handler_timeout" koanf:"handler_timeout"`
	ButtonCaption  string        `yaml:"button_caption" koanf:"button_caption"`

	Commands CommandsConfig `yaml:"commands" koanf:"commands"`
	Webhook  WebhookConfig  `yaml:"webhook" koanf:"webhook"`

	LogLevel  string    `yaml:"log_level" koanf:"log_level"`
	LogFormat LogFormat `yaml:"log_format" koanf:"log_format"`
}

// CommandsConfig controls syncing the command list from a file.
type CommandsConfig struct {
	File         string        `yaml:"file" koanf:"file"`
	PollInterval time.Duration `yaml:"poll_interval" koanf:"poll_interval"`
}

// WebhookConfig holds settings for `tgbot serve`.
type WebhookConfig struct {
	Addr   string `yaml:"addr" koanf:"addr"`
	Path   string `yaml:"path" koanf:"path"`
	Secret string `yaml:"secret,omitempty" koanf:"secret"`
}
