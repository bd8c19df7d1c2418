package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jdelaire/tgbot/core"
)

// DefaultBaseURL is the public Bot API host.
const DefaultBaseURL = "https://api.telegram.org"

// Request is a rendered call, ready for a Transport.
type Request struct {
	Method string // GET or POST
	URL    string
	Header http.Header
	Body   []byte
}

// Builder renders Actions into Requests against one bot endpoint.
type Builder struct {
	endpoint string
}

// NewBuilder creates a Builder for the bot identified by token.
func NewBuilder(baseURL, token string) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{endpoint: fmt.Sprintf("%s/bot%s/", strings.TrimRight(baseURL, "/"), token)}
}

type paramFunc func(a core.Action, q url.Values) error

var getParams = map[string]paramFunc{
	core.MethodSendMessage:         sendMessageParams,
	core.MethodSendAnimation:       mediaParams(true),
	core.MethodSendAudio:           mediaParams(true),
	core.MethodSendDocument:        mediaParams(true),
	core.MethodSendPhoto:           mediaParams(true),
	core.MethodSendSticker:         mediaParams(false),
	core.MethodSendVideo:           mediaParams(true),
	core.MethodSendVideoNote:       mediaParams(false),
	core.MethodSendVoice:           mediaParams(true),
	core.MethodSendLocation:        locationParams,
	core.MethodAnswerInlineQuery:   inlineQueryParams,
	core.MethodAnswerCallbackQuery: callbackQueryParams,
	core.MethodForwardMessage:      forwardParams,
	core.MethodGetMyCommands:       noParams,
	core.MethodGetMe:               noParams,
	core.MethodGetUpdates:          updatesParams,
}

// Build renders a. Unknown methods fail with ErrUnknownOperationKind and
// missing mandatory parameters with ErrMissingParameter. Empty optional
// parameters are left out.
func (b *Builder) Build(a core.Action) (*Request, error) {
	if a.Method == core.MethodSetMyCommands {
		return b.buildSetCommands(a)
	}

	render, ok := getParams[a.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperationKind, a.Method)
	}

	q := url.Values{}
	if err := render(a, q); err != nil {
		return nil, fmt.Errorf("%s: %w", a.Method, err)
	}

	u := b.endpoint + a.Method
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return &Request{Method: http.MethodGet, URL: u}, nil
}

func (b *Builder) buildSetCommands(a core.Action) (*Request, error) {
	cmds := a.Commands
	if cmds == nil {
		cmds = []core.BotCommand{}
	}
	body, err := json.Marshal(struct {
		Commands []core.BotCommand `json:"commands"`
	}{cmds})
	if err != nil {
		return nil, fmt.Errorf("encode commands: %w", err)
	}
	return &Request{
		Method: http.MethodPost,
		URL:    b.endpoint + core.MethodSetMyCommands,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   body,
	}, nil
}

func requireChat(a core.Action, q url.Values) error {
	if a.ChatID == 0 {
		return fmt.Errorf("%w: chat_id", ErrMissingParameter)
	}
	q.Set("chat_id", strconv.FormatInt(a.ChatID, 10))
	return nil
}

func setOptional(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setReplyTo(a core.Action, q url.Values) {
	if a.ReplyToMessageID != 0 {
		q.Set("reply_to_message_id", strconv.FormatInt(a.ReplyToMessageID, 10))
	}
}

func setJSON(q url.Values, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	q.Set(key, string(data))
	return nil
}

func setMarkup(a core.Action, q url.Values) error {
	if a.ReplyMarkup == nil {
		return nil
	}
	return setJSON(q, "reply_markup", a.ReplyMarkup)
}

func sendMessageParams(a core.Action, q url.Values) error {
	if err := requireChat(a, q); err != nil {
		return err
	}
	setOptional(q, "text", a.Text)
	setReplyTo(a, q)
	setOptional(q, "parse_mode", a.ParseMode)
	return setMarkup(a, q)
}

// mediaParams renders the shared shape of the send-media methods. Stickers
// and video notes take no caption or parse mode.
func mediaParams(captioned bool) paramFunc {
	return func(a core.Action, q url.Values) error {
		if err := requireChat(a, q); err != nil {
			return err
		}
		field, _ := core.MediaField(a.Method)
		if a.File == "" {
			return fmt.Errorf("%w: %s", ErrMissingParameter, field)
		}
		q.Set(field, a.File)
		if captioned {
			setOptional(q, "caption", a.Caption)
			setOptional(q, "parse_mode", a.ParseMode)
		}
		setReplyTo(a, q)
		return setMarkup(a, q)
	}
}

func locationParams(a core.Action, q url.Values) error {
	if err := requireChat(a, q); err != nil {
		return err
	}
	if a.Location == nil {
		return fmt.Errorf("%w: longitude, latitude", ErrMissingParameter)
	}
	q.Set("longitude", strconv.FormatFloat(a.Location.Longitude, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(a.Location.Latitude, 'f', -1, 64))
	setReplyTo(a, q)
	return nil
}

func inlineQueryParams(a core.Action, q url.Values) error {
	if a.InlineQueryID == "" {
		return fmt.Errorf("%w: inline_query_id", ErrMissingParameter)
	}
	q.Set("inline_query_id", a.InlineQueryID)
	results := a.Results
	if results == nil {
		results = []core.InlineQueryResult{}
	}
	return setJSON(q, "results", results)
}

func callbackQueryParams(a core.Action, q url.Values) error {
	if a.CallbackQueryID == "" {
		return fmt.Errorf("%w: callback_query_id", ErrMissingParameter)
	}
	q.Set("callback_query_id", a.CallbackQueryID)
	setOptional(q, "text", a.Text)
	return nil
}

func forwardParams(a core.Action, q url.Values) error {
	if err := requireChat(a, q); err != nil {
		return err
	}
	if a.FromChatID == 0 {
		return fmt.Errorf("%w: from_chat_id", ErrMissingParameter)
	}
	if a.MessageID == 0 {
		return fmt.Errorf("%w: message_id", ErrMissingParameter)
	}
	q.Set("from_chat_id", strconv.FormatInt(a.FromChatID, 10))
	q.Set("message_id", strconv.FormatInt(a.MessageID, 10))
	return nil
}

func updatesParams(a core.Action, q url.Values) error {
	q.Set("offset", strconv.FormatInt(a.Offset, 10))
	q.Set("timeout", strconv.Itoa(a.Timeout))
	return nil
}

func noParams(core.Action, url.Values) error { return nil }
