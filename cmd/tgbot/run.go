package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jdelaire/tgbot/adapters/telegram_receiver"
	"github.com/jdelaire/tgbot/core"
	"github.com/jdelaire/tgbot/core/api"
	"github.com/jdelaire/tgbot/core/policy"
	"github.com/jdelaire/tgbot/internal/commandsync"
	"github.com/jdelaire/tgbot/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Long-poll Telegram for updates and answer them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, client, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := newDispatcher(ctx, cfg, client, logger)
		if err != nil {
			return err
		}
		pol := newPolicy(cfg)
		recv := telegram_receiver.New(client, pol.Filter(d.Serve(client), logger), logger)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return recv.Start(ctx) })
		if cfg.Commands.File != "" {
			syncer := commandsync.New(cfg.Commands.File, cfg.Commands.PollInterval, client, logger)
			g.Go(func() error { return syncer.Run(ctx) })
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// newDispatcher builds the dispatcher for the bot handlers. Without a
// configured bot_name the name is looked up with getMe so that
// "/cmd@name" mentions are recognised.
func newDispatcher(ctx context.Context, cfg *config.Config, client *api.Client, logger *slog.Logger) (*core.Dispatcher, error) {
	name := cfg.BotName
	if name == "" {
		me, err := client.GetMe(ctx)
		if err != nil {
			return nil, fmt.Errorf("looking up bot name: %w", err)
		}
		name = me.Username
	}
	logger.Info("bot ready", "bot_name", name)

	return core.NewDispatcher(newBotRegistry(), name, logger,
		core.WithButtonCaption(cfg.ButtonCaption),
		core.WithTimeout(cfg.HandlerTimeout),
	), nil
}

func newPolicy(cfg *config.Config) *policy.Policy {
	return policy.New(cfg.AllowedChats, policy.WithFreshness(cfg.MaxUpdateAge))
}
