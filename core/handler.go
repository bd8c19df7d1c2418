package core

import "context"

// Handler reacts to one payload and returns the result to coerce into a
// response.
type Handler interface {
	Handle(ctx context.Context, p Payload) (Result, error)
}

// MessageFunc adapts a message handler to Handler. Use it for message kinds
// and command patterns.
type MessageFunc func(ctx context.Context, msg *Message) (Result, error)

func (f MessageFunc) Handle(ctx context.Context, p Payload) (Result, error) {
	msg, ok := p.(*Message)
	if !ok {
		return nil, ErrPayloadMismatch
	}
	return f(ctx, msg)
}

// InlineQueryFunc adapts an inline query handler to Handler.
type InlineQueryFunc func(ctx context.Context, q *InlineQuery) (Result, error)

func (f InlineQueryFunc) Handle(ctx context.Context, p Payload) (Result, error) {
	q, ok := p.(*InlineQuery)
	if !ok {
		return nil, ErrPayloadMismatch
	}
	return f(ctx, q)
}

// CallbackQueryFunc adapts a callback query handler to Handler.
type CallbackQueryFunc func(ctx context.Context, q *CallbackQuery) (Result, error)

func (f CallbackQueryFunc) Handle(ctx context.Context, p Payload) (Result, error) {
	q, ok := p.(*CallbackQuery)
	if !ok {
		return nil, ErrPayloadMismatch
	}
	return f(ctx, q)
}

// UpdateHandler consumes raw updates, e.g. from a receiver.
type UpdateHandler func(ctx context.Context, u *Update)
