package core

import (
	"bytes"
	"encoding/json"
)

// Platform method names understood by the action builder.
const (
	MethodSendMessage         = "sendMessage"
	MethodSendAnimation       = "sendAnimation"
	MethodSendAudio           = "sendAudio"
	MethodSendDocument        = "sendDocument"
	MethodSendPhoto           = "sendPhoto"
	MethodSendSticker         = "sendSticker"
	MethodSendVideo           = "sendVideo"
	MethodSendVideoNote       = "sendVideoNote"
	MethodSendVoice           = "sendVoice"
	MethodSendLocation        = "sendLocation"
	MethodAnswerInlineQuery   = "answerInlineQuery"
	MethodAnswerCallbackQuery = "answerCallbackQuery"
	MethodForwardMessage      = "forwardMessage"
	MethodSetMyCommands       = "setMyCommands"
	MethodGetMyCommands       = "getMyCommands"
	MethodGetMe               = "getMe"
	MethodGetUpdates          = "getUpdates"
)

// Action is a resolved outbound call: a method name plus its parameters.
// It marshals to the envelope accepted as a webhook reply. The zero Action is
// the empty no-op response.
type Action struct {
	Method string `json:"method,omitempty"`

	ChatID           int64  `json:"chat_id,omitempty"`
	FromChatID       int64  `json:"from_chat_id,omitempty"`
	MessageID        int64  `json:"message_id,omitempty"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
	Text             string `json:"text,omitempty"`
	Caption          string `json:"caption,omitempty"`
	ParseMode        string `json:"parse_mode,omitempty"`

	// File is a file_id or URL for the media methods. Its wire name depends on
	// the method (photo, audio, ...) so it is rendered by the builder.
	File string `json:"-"`

	Location    *Location             `json:"-"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`

	InlineQueryID   string              `json:"inline_query_id,omitempty"`
	Results         []InlineQueryResult `json:"results,omitempty"`
	CallbackQueryID string              `json:"callback_query_id,omitempty"`

	Commands []BotCommand `json:"commands,omitempty"`

	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

var mediaFields = map[string]string{
	MethodSendAnimation: "animation",
	MethodSendAudio:     "audio",
	MethodSendDocument:  "document",
	MethodSendPhoto:     "photo",
	MethodSendSticker:   "sticker",
	MethodSendVideo:     "video",
	MethodSendVideoNote: "video_note",
	MethodSendVoice:     "voice",
}

// MediaField returns the parameter name carrying the file reference for a
// media method.
func MediaField(method string) (string, bool) {
	f, ok := mediaFields[method]
	return f, ok
}

// MarshalJSON flattens the method-dependent fields (file reference, location)
// into the envelope.
func (a Action) MarshalJSON() ([]byte, error) {
	type plain Action
	data, err := json.Marshal(plain(a))
	if err != nil {
		return nil, err
	}
	field, isMedia := MediaField(a.Method)
	if (!isMedia || a.File == "") && a.Location == nil {
		return data, nil
	}

	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if isMedia && a.File != "" {
		m[field] = a.File
	}
	if a.Location != nil {
		m["longitude"] = a.Location.Longitude
		m["latitude"] = a.Location.Latitude
	}
	return json.Marshal(m)
}

// IsEmpty reports whether a is the no-op response.
func (a Action) IsEmpty() bool {
	return a.Method == ""
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineQueryResult is one entry of an answerInlineQuery call.
type InlineQueryResult struct {
	Type    string `json:"type"`
	ID      string `json:"id"` // decimal position, sent as a string as the Bot API requires
	Title   string `json:"title"`
	Caption string `json:"caption,omitempty"`
}

type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}
