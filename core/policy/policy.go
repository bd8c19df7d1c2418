package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jdelaire/tgbot/core"
)

const (
	// DefaultFreshness is the age past which a message update is dropped.
	DefaultFreshness = 5 * time.Minute

	maxSeenIDs = 10000
	pruneCount = 1000
)

var (
	ErrUnauthorizedChat = errors.New("unauthorized chat")
	ErrStaleUpdate      = errors.New("stale update")
	ErrDuplicateUpdate  = errors.New("duplicate update")
)

// Policy authorizes inbound updates against a chat allowlist,
// freshness window, and update_id deduplication.
type Policy struct {
	freshness time.Duration
	now       func() time.Time

	mu        sync.Mutex
	allowed   map[int64]bool
	seen      map[int64]bool
	seenOrder []int64
}

// Option configures a Policy.
type Option func(*Policy)

// WithFreshness sets the freshness window. Zero disables the check.
func WithFreshness(d time.Duration) Option {
	return func(p *Policy) { p.freshness = d }
}

// New creates a Policy that authorizes only the given chat IDs. An empty
// list allows every chat.
func New(chatIDs []int64, opts ...Option) *Policy {
	allowed := make(map[int64]bool, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = true
	}
	p := &Policy{
		freshness: DefaultFreshness,
		now:       time.Now,
		allowed:   allowed,
		seen:      make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authorize checks whether an update should be processed. Each accepted
// update_id is remembered so that redeliveries are rejected.
func (p *Policy) Authorize(u *core.Update) error {
	if u == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.allowed) > 0 {
		chatID, ok := chatOf(u)
		if !ok || !p.allowed[chatID] {
			return fmt.Errorf("%w: %d", ErrUnauthorizedChat, chatID)
		}
	}

	if date := dateOf(u); p.freshness > 0 && date > 0 {
		age := p.now().Sub(time.Unix(date, 0))
		if age > p.freshness {
			return fmt.Errorf("%w: %v old", ErrStaleUpdate, age.Truncate(time.Second))
		}
	}

	// Hand-built updates carry no id and cannot be deduplicated.
	if u.UpdateID == 0 {
		return nil
	}

	if p.seen[u.UpdateID] {
		return fmt.Errorf("%w: %d", ErrDuplicateUpdate, u.UpdateID)
	}

	// Prune oldest entries if at capacity.
	if len(p.seen) >= maxSeenIDs {
		for i := 0; i < pruneCount && i < len(p.seenOrder); i++ {
			delete(p.seen, p.seenOrder[i])
		}
		p.seenOrder = p.seenOrder[pruneCount:]
	}

	p.seen[u.UpdateID] = true
	p.seenOrder = append(p.seenOrder, u.UpdateID)

	return nil
}

// Filter drops unauthorized updates before they reach next.
func (p *Policy) Filter(next core.UpdateHandler, logger *slog.Logger) core.UpdateHandler {
	return func(ctx context.Context, u *core.Update) {
		if err := p.Authorize(u); err != nil {
			logger.Warn("update rejected", "update_id", u.UpdateID, "error", err)
			return
		}
		next(ctx, u)
	}
}

// Dispatcher is the part of *core.Dispatcher that Guard wraps.
type Dispatcher interface {
	Dispatch(ctx context.Context, u *core.Update) (core.Action, error)
}

type guarded struct {
	policy *Policy
	next   Dispatcher
}

// Guard returns a Dispatcher that fails with the Authorize error for
// rejected updates.
func (p *Policy) Guard(next Dispatcher) Dispatcher {
	return &guarded{policy: p, next: next}
}

func (g *guarded) Dispatch(ctx context.Context, u *core.Update) (core.Action, error) {
	if err := g.policy.Authorize(u); err != nil {
		return core.Action{}, err
	}
	return g.next.Dispatch(ctx, u)
}

// chatOf returns the chat an update belongs to. Inline queries have no chat;
// the sender's id is used, which equals their private chat id.
func chatOf(u *core.Update) (int64, bool) {
	kind, ok := u.Kind()
	if !ok {
		return 0, false
	}
	switch kind {
	case core.UpdateInlineQuery:
		if u.InlineQuery.From != nil {
			return u.InlineQuery.From.ID, true
		}
		return 0, false
	case core.UpdateCallbackQuery:
		q := u.CallbackQuery
		if q.Message != nil {
			return q.Message.Chat.ID, true
		}
		if q.From != nil {
			return q.From.ID, true
		}
		return 0, false
	}
	return messageOf(u).Chat.ID, true
}

// dateOf returns the message date, or 0 when the update carries none.
// dateOf prefers the edit date, since edits keep the original send date.
func dateOf(u *core.Update) int64 {
	msg := messageOf(u)
	if msg == nil {
		return 0
	}
	if msg.EditDate != 0 {
		return msg.EditDate
	}
	return msg.Date
}

func messageOf(u *core.Update) *core.Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost
	}
	return nil
}
