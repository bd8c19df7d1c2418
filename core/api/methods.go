package api

import (
	"context"
	"fmt"

	"github.com/jdelaire/tgbot/core"
)

// SendOption sets optional parameters on an outgoing message.
type SendOption func(*core.Action)

func WithCaption(caption string) SendOption {
	return func(a *core.Action) { a.Caption = caption }
}

func WithReplyTo(messageID int64) SendOption {
	return func(a *core.Action) { a.ReplyToMessageID = messageID }
}

// WithParseMode sets the formatting mode, e.g. "HTML" or "MarkdownV2".
func WithParseMode(mode string) SendOption {
	return func(a *core.Action) { a.ParseMode = mode }
}

// WithButtons attaches an inline keyboard built from labels.
func WithButtons(labels ...string) SendOption {
	return func(a *core.Action) { a.ReplyMarkup = core.NewKeyboard(labels) }
}

var mediaMethods = map[core.Kind]string{
	core.KindAnimation: core.MethodSendAnimation,
	core.KindAudio:     core.MethodSendAudio,
	core.KindDocument:  core.MethodSendDocument,
	core.KindPhoto:     core.MethodSendPhoto,
	core.KindSticker:   core.MethodSendSticker,
	core.KindVideo:     core.MethodSendVideo,
	core.KindVideoNote: core.MethodSendVideoNote,
	core.KindVoice:     core.MethodSendVoice,
}

func apply(a core.Action, opts []SendOption) core.Action {
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// SendText sends a text message.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, opts ...SendOption) (*Reply, error) {
	return c.Send(ctx, apply(core.Action{Method: core.MethodSendMessage, ChatID: chatID, Text: text}, opts))
}

// SendMedia sends a file of the given kind by file_id or URL.
func (c *Client) SendMedia(ctx context.Context, kind core.Kind, chatID int64, file string, opts ...SendOption) (*Reply, error) {
	method, ok := mediaMethods[kind]
	if !ok {
		return nil, fmt.Errorf("%w: media kind %q", ErrUnknownOperationKind, kind)
	}
	return c.Send(ctx, apply(core.Action{Method: method, ChatID: chatID, File: file}, opts))
}

func (c *Client) SendLocation(ctx context.Context, chatID int64, longitude, latitude float64, opts ...SendOption) (*Reply, error) {
	a := core.Action{
		Method:   core.MethodSendLocation,
		ChatID:   chatID,
		Location: &core.Location{Longitude: longitude, Latitude: latitude},
	}
	return c.Send(ctx, apply(a, opts))
}

// AnswerInlineQuery answers with one document result per entry.
func (c *Client) AnswerInlineQuery(ctx context.Context, queryID string, entries ...string) (*Reply, error) {
	return c.Send(ctx, core.Action{
		Method:        core.MethodAnswerInlineQuery,
		InlineQueryID: queryID,
		Results:       core.DocumentResults(entries),
	})
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, queryID, text string) (*Reply, error) {
	return c.Send(ctx, core.Action{
		Method:          core.MethodAnswerCallbackQuery,
		CallbackQueryID: queryID,
		Text:            text,
	})
}

func (c *Client) ForwardMessage(ctx context.Context, messageID, fromChatID, toChatID int64) (*Reply, error) {
	return c.Send(ctx, core.Action{
		Method:     core.MethodForwardMessage,
		ChatID:     toChatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	})
}

// SetCommands replaces the bot's command list.
func (c *Client) SetCommands(ctx context.Context, cmds []core.BotCommand) (*Reply, error) {
	return c.Send(ctx, core.Action{Method: core.MethodSetMyCommands, Commands: cmds})
}

// SetCommandPairs zips parallel command and description lists.
func (c *Client) SetCommandPairs(ctx context.Context, commands, descriptions []string) (*Reply, error) {
	if len(commands) != len(descriptions) {
		return nil, fmt.Errorf("%w: %d commands, %d descriptions", ErrInvalidArguments, len(commands), len(descriptions))
	}
	cmds := make([]core.BotCommand, len(commands))
	for i := range commands {
		cmds[i] = core.BotCommand{Command: commands[i], Description: descriptions[i]}
	}
	return c.SetCommands(ctx, cmds)
}

func (c *Client) GetCommands(ctx context.Context) ([]core.BotCommand, error) {
	r, err := c.Send(ctx, core.Action{Method: core.MethodGetMyCommands})
	if err != nil {
		return nil, err
	}
	var cmds []core.BotCommand
	if err := r.Into(&cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (*core.User, error) {
	r, err := c.Send(ctx, core.Action{Method: core.MethodGetMe})
	if err != nil {
		return nil, err
	}
	var me core.User
	if err := r.Into(&me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for updates with update_id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]core.Update, error) {
	r, err := c.Send(ctx, core.Action{Method: core.MethodGetUpdates, Offset: offset, Timeout: timeout})
	if err != nil {
		return nil, err
	}
	if r.Decoded && !r.OK {
		return nil, fmt.Errorf("%w: getUpdates returned ok=false: %s", ErrInvalidStatus, r.Description)
	}
	var updates []core.Update
	if err := r.Into(&updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}
