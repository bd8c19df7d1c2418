package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jdelaire/tgbot/core"
)

// newBotRegistry wires the handlers served by `run` and `serve`: a few
// commands plus echo handlers for text, photos, locations, inline queries
// and button presses.
func newBotRegistry() *core.Registry {
	reg := core.NewRegistry()

	reg.Register(`^/start$`, core.MessageFunc(func(_ context.Context, msg *core.Message) (core.Result, error) {
		name := "there"
		if msg.From != nil && msg.From.FirstName != "" {
			name = msg.From.FirstName
		}
		return core.Text(fmt.Sprintf("Hi %s! Send me anything and I will echo it. /help lists the commands.", name)), nil
	}))
	reg.Register(`^/help$`, core.MessageFunc(func(context.Context, *core.Message) (core.Result, error) {
		return core.Text(helpText(reg)), nil
	}))
	reg.Register(`^/choose$`, core.MessageFunc(func(context.Context, *core.Message) (core.Result, error) {
		return core.Buttons{"Yes", "No", "Maybe"}, nil
	}))
	reg.Register(`^/slow$`, core.MessageFunc(func(ctx context.Context, _ *core.Message) (core.Result, error) {
		return core.Go(ctx, func(ctx context.Context) (core.Result, error) {
			select {
			case <-time.After(time.Second):
				return core.Text("Done waiting."), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}), nil
	}))

	reg.Register(string(core.KindText), core.MessageFunc(func(_ context.Context, msg *core.Message) (core.Result, error) {
		return core.Text(msg.Text), nil
	}))
	reg.Register(string(core.KindPhoto), core.MessageFunc(func(_ context.Context, msg *core.Message) (core.Result, error) {
		largest := msg.Photo[len(msg.Photo)-1]
		return core.Action{
			Method:           core.MethodSendPhoto,
			ChatID:           msg.Chat.ID,
			File:             largest.FileID,
			Caption:          msg.Caption,
			ReplyToMessageID: msg.MessageID,
		}, nil
	}))
	reg.Register(string(core.KindLocation), core.MessageFunc(func(_ context.Context, msg *core.Message) (core.Result, error) {
		return core.Text(fmt.Sprintf("You are at %.5f, %.5f", msg.Location.Latitude, msg.Location.Longitude)), nil
	}))

	reg.Register(string(core.KindInlineQuery), core.InlineQueryFunc(func(_ context.Context, q *core.InlineQuery) (core.Result, error) {
		if q.Query == "" {
			return nil, nil
		}
		return core.Buttons{q.Query, strings.ToUpper(q.Query), strings.ToLower(q.Query)}, nil
	}))
	reg.Register(string(core.KindCallbackQuery), core.CallbackQueryFunc(func(_ context.Context, q *core.CallbackQuery) (core.Result, error) {
		return core.Text("You picked " + q.Data), nil
	}))

	return reg
}

func helpText(reg *core.Registry) string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, p := range reg.Commands() {
		b.WriteString("\n")
		b.WriteString(strings.Trim(p, "^$"))
	}
	return b.String()
}
