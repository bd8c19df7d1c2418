package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jdelaire/tgbot/adapters/webhook"
	"github.com/jdelaire/tgbot/internal/commandsync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a webhook endpoint and answer updates in the response body",
	Long: `Starts an HTTP server that accepts Telegram webhook deliveries on
webhook.path and answers each update with the resulting Bot API call as the
response body. Register the public URL with Telegram's setWebhook first.`,
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

		opts := []webhook.Option{webhook.WithPath(cfg.Webhook.Path)}
		if cfg.Webhook.Secret != "" {
			opts = append(opts, webhook.WithSecret(cfg.Webhook.Secret))
		}
		srv := webhook.New(cfg.Webhook.Addr, newPolicy(cfg).Guard(d), logger, opts...)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("shutting down webhook server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		if cfg.Commands.File != "" {
			syncer := commandsync.New(cfg.Commands.File, cfg.Commands.PollInterval, client, logger)
			g.Go(func() error { return syncer.Run(ctx) })
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
