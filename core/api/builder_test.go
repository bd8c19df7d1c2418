package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jdelaire/tgbot/core"
)

const testEndpoint = "https://api.example.org/botTOKEN/"

func newTestBuilder() *Builder {
	return NewBuilder("https://api.example.org/", "TOKEN")
}

func query(t *testing.T, req *Request) url.Values {
	t.Helper()
	u, err := url.Parse(req.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u.Query()
}

func TestBuildQueryParams(t *testing.T) {
	tests := []struct {
		name   string
		action core.Action
		path   string
		want   map[string]string
		absent []string
	}{
		{
			name:   "text",
			action: core.Action{Method: core.MethodSendMessage, ChatID: 5, Text: "hi there", ReplyToMessageID: 9, ParseMode: "HTML"},
			path:   "sendMessage",
			want:   map[string]string{"chat_id": "5", "text": "hi there", "reply_to_message_id": "9", "parse_mode": "HTML"},
		},
		{
			name:   "text without optionals",
			action: core.Action{Method: core.MethodSendMessage, ChatID: -100},
			path:   "sendMessage",
			want:   map[string]string{"chat_id": "-100"},
			absent: []string{"text", "reply_to_message_id", "parse_mode", "reply_markup"},
		},
		{
			name:   "photo",
			action: core.Action{Method: core.MethodSendPhoto, ChatID: 1, File: "AgAD", Caption: "look", ParseMode: "HTML"},
			path:   "sendPhoto",
			want:   map[string]string{"chat_id": "1", "photo": "AgAD", "caption": "look", "parse_mode": "HTML"},
		},
		{
			name:   "sticker ignores caption",
			action: core.Action{Method: core.MethodSendSticker, ChatID: 1, File: "stk", Caption: "nope", ParseMode: "HTML", ReplyToMessageID: 3},
			path:   "sendSticker",
			want:   map[string]string{"chat_id": "1", "sticker": "stk", "reply_to_message_id": "3"},
			absent: []string{"caption", "parse_mode"},
		},
		{
			name:   "video note",
			action: core.Action{Method: core.MethodSendVideoNote, ChatID: 1, File: "vn"},
			path:   "sendVideoNote",
			want:   map[string]string{"video_note": "vn"},
			absent: []string{"caption"},
		},
		{
			name:   "voice",
			action: core.Action{Method: core.MethodSendVoice, ChatID: 1, File: "v", Caption: "c"},
			path:   "sendVoice",
			want:   map[string]string{"voice": "v", "caption": "c"},
		},
		{
			name:   "location",
			action: core.Action{Method: core.MethodSendLocation, ChatID: 1, Location: &core.Location{Longitude: 2.3522, Latitude: 48.8566}, ReplyToMessageID: 4},
			path:   "sendLocation",
			want:   map[string]string{"longitude": "2.3522", "latitude": "48.8566", "reply_to_message_id": "4"},
		},
		{
			name:   "callback",
			action: core.Action{Method: core.MethodAnswerCallbackQuery, CallbackQueryID: "q1", Text: "ok"},
			path:   "answerCallbackQuery",
			want:   map[string]string{"callback_query_id": "q1", "text": "ok"},
			absent: []string{"chat_id"},
		},
		{
			name:   "forward",
			action: core.Action{Method: core.MethodForwardMessage, ChatID: 2, FromChatID: 3, MessageID: 44},
			path:   "forwardMessage",
			want:   map[string]string{"chat_id": "2", "from_chat_id": "3", "message_id": "44"},
		},
		{
			name:   "updates",
			action: core.Action{Method: core.MethodGetUpdates, Offset: 201, Timeout: 30},
			path:   "getUpdates",
			want:   map[string]string{"offset": "201", "timeout": "30"},
		},
	}

	b := newTestBuilder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := b.Build(tt.action)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if req.Method != http.MethodGet {
				t.Errorf("http method = %s, want GET", req.Method)
			}
			if !strings.HasPrefix(req.URL, testEndpoint+tt.path+"?") {
				t.Errorf("url = %s, want prefix %s", req.URL, testEndpoint+tt.path)
			}
			q := query(t, req)
			for k, v := range tt.want {
				if got := q.Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
			for _, k := range tt.absent {
				if q.Has(k) {
					t.Errorf("%s should be absent, got %q", k, q.Get(k))
				}
			}
		})
	}
}

func TestBuildNoParams(t *testing.T) {
	b := newTestBuilder()
	for _, m := range []string{core.MethodGetMe, core.MethodGetMyCommands} {
		req, err := b.Build(core.Action{Method: m})
		if err != nil {
			t.Fatalf("build %s: %v", m, err)
		}
		if req.URL != testEndpoint+m {
			t.Errorf("url = %s, want %s", req.URL, testEndpoint+m)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := newTestBuilder()
	a := core.Action{Method: core.MethodSendMessage, ChatID: 1, Text: "x", ReplyToMessageID: 2, ParseMode: "HTML"}

	first, _ := b.Build(a)
	for i := 0; i < 20; i++ {
		again, _ := b.Build(a)
		if again.URL != first.URL {
			t.Fatalf("url changed between builds: %s vs %s", again.URL, first.URL)
		}
	}
}

func TestBuildInlineResults(t *testing.T) {
	b := newTestBuilder()
	req, err := b.Build(core.Action{
		Method:        core.MethodAnswerInlineQuery,
		InlineQueryID: "abc",
		Results:       core.DocumentResults([]string{"x", "y"}),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	q := query(t, req)
	var results []core.InlineQueryResult
	if err := json.Unmarshal([]byte(q.Get("results")), &results); err != nil {
		t.Fatalf("results param: %v", err)
	}
	if len(results) != 2 || results[1].ID != "1" || results[1].Title != "y" {
		t.Errorf("results = %+v", results)
	}
}

func TestBuildReplyMarkup(t *testing.T) {
	b := newTestBuilder()
	req, err := b.Build(core.Action{Method: core.MethodSendMessage, ChatID: 1, Text: "pick", ReplyMarkup: core.NewKeyboard([]string{"a"})})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := `{"inline_keyboard":[[{"text":"a","callback_data":"a"}]]}`
	if got := query(t, req).Get("reply_markup"); got != want {
		t.Errorf("reply_markup = %s, want %s", got, want)
	}
}

func TestBuildSetCommands(t *testing.T) {
	b := newTestBuilder()
	req, err := b.Build(core.Action{
		Method:   core.MethodSetMyCommands,
		Commands: []core.BotCommand{{Command: "start", Description: "Start the bot"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Method != http.MethodPost {
		t.Errorf("http method = %s, want POST", req.Method)
	}
	if req.URL != testEndpoint+"setMyCommands" {
		t.Errorf("url = %s", req.URL)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	want := `{"commands":[{"command":"start","description":"Start the bot"}]}`
	if string(req.Body) != want {
		t.Errorf("body = %s, want %s", req.Body, want)
	}
}

func TestBuildSetCommandsEmpty(t *testing.T) {
	req, err := newTestBuilder().Build(core.Action{Method: core.MethodSetMyCommands})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if string(req.Body) != `{"commands":[]}` {
		t.Errorf("body = %s", req.Body)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		action core.Action
		want   error
	}{
		{"unknown method", core.Action{Method: "sendCarrierPigeon", ChatID: 1}, ErrUnknownOperationKind},
		{"empty method", core.Action{}, ErrUnknownOperationKind},
		{"text without chat", core.Action{Method: core.MethodSendMessage, Text: "hi"}, ErrMissingParameter},
		{"photo without file", core.Action{Method: core.MethodSendPhoto, ChatID: 1}, ErrMissingParameter},
		{"location without point", core.Action{Method: core.MethodSendLocation, ChatID: 1}, ErrMissingParameter},
		{"inline without id", core.Action{Method: core.MethodAnswerInlineQuery}, ErrMissingParameter},
		{"callback without id", core.Action{Method: core.MethodAnswerCallbackQuery, Text: "x"}, ErrMissingParameter},
		{"forward without source", core.Action{Method: core.MethodForwardMessage, ChatID: 1, MessageID: 2}, ErrMissingParameter},
	}

	b := newTestBuilder()
	for _, tt := range tests {
		_, err := b.Build(tt.action)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestNewBuilderDefaultBase(t *testing.T) {
	req, err := NewBuilder("", "T").Build(core.Action{Method: core.MethodGetMe})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.URL != "https://api.telegram.org/botT/getMe" {
		t.Errorf("url = %s", req.URL)
	}
}
