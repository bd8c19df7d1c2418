package core

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultButtonCaption is the message text sent along a Buttons result.
	DefaultButtonCaption = "Click the button(s)"

	maxButtonsPerRow  = 8
	inlineResultType  = "document"
	inlinePlaceholder = "1234"
)

// Responder delivers a dispatched Action to the platform.
type Responder interface {
	Respond(ctx context.Context, a Action) error
}

// Dispatcher classifies updates, runs the matching handler and turns its
// result into an Action.
type Dispatcher struct {
	registry *Registry
	botName  string
	caption  string
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithButtonCaption overrides DefaultButtonCaption.
func WithButtonCaption(caption string) Option {
	return func(d *Dispatcher) { d.caption = caption }
}

// WithTimeout bounds each update handled through Serve. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// NewDispatcher creates a Dispatcher. botName is used without the leading
// "@" to strip mentions before command matching.
func NewDispatcher(reg *Registry, botName string, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		botName:  botName,
		caption:  DefaultButtonCaption,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher reads from.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch handles a single update. It returns exactly one of a response
// Action (possibly empty) or an error.
func (d *Dispatcher) Dispatch(ctx context.Context, u *Update) (Action, error) {
	log := d.logger.With("trace_id", uuid.NewString())
	if u != nil {
		log = log.With("update_id", u.UpdateID)
	}
	log.Debug("update received")

	kind, ok := u.Kind()
	if !ok {
		return Action{}, ErrUnknownUpdateKind
	}
	log.Debug("update classified", "kind", kind)

	switch kind {
	case UpdateInlineQuery:
		return d.dispatchInlineQuery(ctx, log, u.InlineQuery)
	case UpdateCallbackQuery:
		return d.dispatchCallbackQuery(ctx, log, u.CallbackQuery)
	default:
		return d.dispatchMessage(ctx, log, u.message(kind))
	}
}

// Serve returns an UpdateHandler that dispatches each update and hands
// non-empty responses to r. Failures are logged.
func (d *Dispatcher) Serve(r Responder) UpdateHandler {
	return func(ctx context.Context, u *Update) {
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		var id int64
		if u != nil {
			id = u.UpdateID
		}

		a, err := d.Dispatch(ctx, u)
		if err != nil {
			d.logger.Warn("dispatch failed", "update_id", id, "error", err)
			return
		}
		if a.IsEmpty() {
			return
		}
		if err := r.Respond(ctx, a); err != nil {
			d.logger.Error("failed to send response", "update_id", id, "method", a.Method, "error", err)
		}
	}
}

func (d *Dispatcher) dispatchMessage(ctx context.Context, log *slog.Logger, msg *Message) (Action, error) {
	msgKind, _ := msg.Kind()

	var (
		key string
		h   Handler
	)
	if msg.Text != "" {
		pattern, cmd, err := d.registry.MatchCommand(msg.Text, d.botName)
		if err != nil {
			return Action{}, err
		}
		if cmd != nil && msgKind == KindText {
			key, h = pattern, cmd
		}
	}
	if h == nil && msgKind != "" {
		if h = d.registry.Event(msgKind); h != nil {
			key = string(msgKind)
		}
	}
	if h == nil {
		if msgKind == "" {
			return Action{}, fmt.Errorf("%w: no known payload", ErrUnsupportedMessageKind)
		}
		return Action{}, fmt.Errorf("%w: %s", ErrUnsupportedMessageKind, msgKind)
	}
	log.Debug("message classified", "message_kind", msgKind, "handler", key)

	res, err := d.invoke(ctx, log, key, h, msg)
	if err != nil {
		return Action{}, err
	}

	var a Action
	switch r := res.(type) {
	case Text:
		a = Action{
			Method:           MethodSendMessage,
			ChatID:           msg.Chat.ID,
			Text:             string(r),
			ReplyToMessageID: msg.MessageID,
		}
	case Buttons:
		a = Action{
			Method:           MethodSendMessage,
			ChatID:           msg.Chat.ID,
			Text:             d.caption,
			ReplyToMessageID: msg.MessageID,
			ReplyMarkup:      NewKeyboard(r),
		}
	default:
		a = passthrough(res)
	}
	log.Debug("result coerced", "method", a.Method)
	return a, nil
}

func (d *Dispatcher) dispatchInlineQuery(ctx context.Context, log *slog.Logger, q *InlineQuery) (Action, error) {
	h := d.registry.Event(KindInlineQuery)
	if h == nil {
		return Action{}, fmt.Errorf("%w: %s", ErrUnsupportedEventKind, KindInlineQuery)
	}

	res, err := d.invoke(ctx, log, string(KindInlineQuery), h, q)
	if err != nil {
		return Action{}, err
	}

	var a Action
	switch r := res.(type) {
	case Text:
		a = Action{
			Method:        MethodAnswerInlineQuery,
			InlineQueryID: q.ID,
			Results: []InlineQueryResult{{
				Type:    inlineResultType,
				ID:      inlinePlaceholder,
				Title:   string(r),
				Caption: string(r),
			}},
		}
	case Buttons:
		a = Action{
			Method:        MethodAnswerInlineQuery,
			InlineQueryID: q.ID,
			Results:       DocumentResults(r),
		}
	default:
		a = passthrough(res)
	}
	log.Debug("result coerced", "method", a.Method)
	return a, nil
}

func (d *Dispatcher) dispatchCallbackQuery(ctx context.Context, log *slog.Logger, q *CallbackQuery) (Action, error) {
	h := d.registry.Event(KindCallbackQuery)
	if h == nil {
		return Action{}, fmt.Errorf("%w: %s", ErrUnsupportedEventKind, KindCallbackQuery)
	}

	res, err := d.invoke(ctx, log, string(KindCallbackQuery), h, q)
	if err != nil {
		return Action{}, err
	}

	var a Action
	switch r := res.(type) {
	case Text:
		a = Action{
			Method:          MethodAnswerCallbackQuery,
			CallbackQueryID: q.ID,
			Text:            string(r),
		}
	case Buttons:
		log.Debug("buttons are not supported for callback queries, ignoring result")
	default:
		a = passthrough(res)
	}
	log.Debug("result coerced", "method", a.Method)
	return a, nil
}

// invoke calls h and settles any asynchronous result.
func (d *Dispatcher) invoke(ctx context.Context, log *slog.Logger, key string, h Handler, p Payload) (res Result, err error) {
	log.Debug("invoking handler", "handler", key)

	func() {
		defer func() {
			if r := recover(); r != nil {
				res, err = nil, fmt.Errorf("panic: %v", r)
			}
		}()
		res, err = h.Handle(ctx, p)
	}()
	if err != nil {
		return nil, &HandlerError{Key: key, Err: err}
	}

	for {
		async, ok := res.(*Async)
		if !ok {
			return res, nil
		}
		if async == nil {
			return nil, nil
		}
		res, err = async.Await(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("await handler %q: %w", key, err)
			}
			return nil, &HandlerRejection{Key: key, Err: err}
		}
	}
}

// passthrough resolves the result kinds that do not depend on the update.
func passthrough(res Result) Action {
	switch r := res.(type) {
	case Action:
		return r
	case *Action:
		if r != nil {
			return *r
		}
	}
	return Action{}
}

// NewKeyboard lays labels out in rows of at most eight buttons. Each button
// sends its label back as callback data.
func NewKeyboard(labels []string) *InlineKeyboardMarkup {
	rows := make([][]InlineKeyboardButton, 0, (len(labels)+maxButtonsPerRow-1)/maxButtonsPerRow)
	for start := 0; start < len(labels); start += maxButtonsPerRow {
		end := min(start+maxButtonsPerRow, len(labels))
		row := make([]InlineKeyboardButton, 0, end-start)
		for _, l := range labels[start:end] {
			row = append(row, InlineKeyboardButton{Text: l, CallbackData: l})
		}
		rows = append(rows, row)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// DocumentResults builds one document result per entry, identified by its
// position.
func DocumentResults(entries []string) []InlineQueryResult {
	results := make([]InlineQueryResult, len(entries))
	for i, e := range entries {
		results[i] = InlineQueryResult{
			Type:    inlineResultType,
			ID:      strconv.Itoa(i),
			Title:   e,
			Caption: e,
		}
	}
	return results
}
