package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdelaire/tgbot/adapters/httptransport"
	"github.com/jdelaire/tgbot/core/api"
	"github.com/jdelaire/tgbot/internal/config"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tgbot",
	Short: "Telegram bot runner and Bot API client",
	Long: `tgbot receives Telegram updates by long polling or webhook, routes them
to registered handlers and sends the replies. It also exposes the Bot API
calls it uses (send, forward, commands, getMe) as subcommands.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads and validates the config and builds the logger.
func loadConfig(needToken bool) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	if needToken {
		if err := cfg.RequireToken(); err != nil {
			return nil, nil, err
		}
	}
	logger := cfg.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.APIBaseURL, cfg.Token, httptransport.New(), logger)
}

// setup is loadConfig plus a client, for commands that call the API.
func setup() (*config.Config, *slog.Logger, *api.Client, error) {
	cfg, logger, err := loadConfig(true)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, newClient(cfg, logger), nil
}
