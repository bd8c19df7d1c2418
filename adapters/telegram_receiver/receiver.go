package telegram_receiver

import (
	"context"
	"log/slog"
	"time"

	"github.com/jdelaire/tgbot/core"
)

const (
	longPollTimeout = 30
	errorBackoff    = 5 * time.Second
)

// Poller fetches pending updates. *api.Client satisfies it.
type Poller interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]core.Update, error)
}

// Receiver long-polls Telegram for inbound updates.
type Receiver struct {
	poller  Poller
	handler core.UpdateHandler
	logger  *slog.Logger
	backoff time.Duration
	offset  int64
}

// New creates a Telegram receiver.
func New(poller Poller, handler core.UpdateHandler, logger *slog.Logger) *Receiver {
	return &Receiver{
		poller:  poller,
		handler: handler,
		logger:  logger,
		backoff: errorBackoff,
	}
}

// WithBackoff overrides the pause after a failed poll.
func (r *Receiver) WithBackoff(d time.Duration) *Receiver {
	r.backoff = d
	return r
}

// Offset returns the next update_id the receiver will ask for.
func (r *Receiver) Offset() int64 { return r.offset }

// Start begins the long-poll loop. Blocks until ctx is cancelled.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.Info("telegram receiver started")
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Info("telegram receiver stopped")
			return nil
		}

		updates, err := r.poller.GetUpdates(ctx, r.offset, longPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("telegram receiver stopped")
				return nil
			}
			r.logger.Error("poll error", "error", err)
			select {
			case <-time.After(r.backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for i := range updates {
			u := &updates[i]
			r.handler(ctx, u)
			r.offset = u.UpdateID + 1
		}
	}
}
