package commandsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/jdelaire/tgbot/core"
	"github.com/jdelaire/tgbot/core/api"
)

// Setter publishes a command list. *api.Client satisfies it.
type Setter interface {
	SetCommands(ctx context.Context, cmds []core.BotCommand) (*api.Reply, error)
}

// Syncer keeps the bot's published command list in step with a file.
type Syncer struct {
	path     string
	interval time.Duration
	setter   Setter
	logger   *slog.Logger

	mu      sync.Mutex
	modTime time.Time
	pushed  []core.BotCommand
	synced  bool
}

// New creates a Syncer that polls path at the given interval.
func New(path string, interval time.Duration, setter Setter, logger *slog.Logger) *Syncer {
	return &Syncer{
		path:     path,
		interval: interval,
		setter:   setter,
		logger:   logger,
	}
}

// Sync loads the file and publishes it if it differs from what was last
// published. A missing file publishes nothing.
func (s *Syncer) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modTime = fileModTime(s.path)

	cmds, err := LoadCommands(s.path)
	if err != nil {
		return err
	}
	if cmds == nil {
		s.logger.Debug("no commands file", "path", s.path)
		return nil
	}
	if s.synced && slices.Equal(cmds, s.pushed) {
		s.logger.Debug("commands unchanged", "path", s.path)
		return nil
	}

	if _, err := s.setter.SetCommands(ctx, cmds); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	s.pushed = cmds
	s.synced = true
	s.logger.Info("commands synced", "path", s.path, "count", len(cmds))
	return nil
}

// Run syncs once, then polls until the context is cancelled. Failed syncs
// are logged and retried on the next change.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		s.logger.Error("sync commands failed", "path", s.path, "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !s.changed() {
				continue
			}
			s.logger.Info("commands file changed", "path", s.path)
			if err := s.Sync(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("sync commands failed", "path", s.path, "error", err)
			}
		}
	}
}

func (s *Syncer) changed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := fileModTime(s.path)
	// Skip if file doesn't exist (may be mid-save) or unchanged.
	return !current.IsZero() && !current.Equal(s.modTime)
}

// fileModTime returns the file's modification time, or zero if it can't be read.
func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
