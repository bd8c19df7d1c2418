package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/jdelaire/tgbot/core"
)

// --- test helpers ---

type call struct {
	method string
	url    string
	header http.Header
	body   []byte
}

type fakeTransport struct {
	mu     sync.Mutex
	calls  []call
	status int
	body   string
	err    error
}

func (f *fakeTransport) record(c call) (*HTTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &HTTPResponse{StatusCode: status, Body: []byte(f.body)}, nil
}

func (f *fakeTransport) Get(_ context.Context, u string) (*HTTPResponse, error) {
	return f.record(call{method: http.MethodGet, url: u})
}

func (f *fakeTransport) Post(_ context.Context, u string, h http.Header, body []byte) (*HTTPResponse, error) {
	return f.record(call{method: http.MethodPost, url: u, header: h, body: body})
}

func (f *fakeTransport) last(t *testing.T) call {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no calls recorded")
	}
	return f.calls[len(f.calls)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(ft *fakeTransport) *Client {
	return NewClient("https://api.example.org", "TOKEN", ft, testLogger())
}

func lastQuery(t *testing.T, ft *fakeTransport) url.Values {
	t.Helper()
	u, err := url.Parse(ft.last(t).url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u.Query()
}

// --- tests ---

func TestSendDecodesReply(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true,"result":{"message_id":12}}`}
	c := newTestClient(ft)

	r, err := c.SendText(context.Background(), 5, "hello", WithReplyTo(3))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !r.Decoded || !r.OK {
		t.Errorf("reply = %+v, want decoded ok", r)
	}
	var msg core.Message
	if err := r.Into(&msg); err != nil || msg.MessageID != 12 {
		t.Errorf("into: msg=%+v err=%v", msg, err)
	}

	q := lastQuery(t, ft)
	if q.Get("chat_id") != "5" || q.Get("text") != "hello" || q.Get("reply_to_message_id") != "3" {
		t.Errorf("query = %v", q)
	}
}

func TestSendNonJSONBodyFallsBack(t *testing.T) {
	ft := &fakeTransport{body: "<html>proxy page</html>"}
	c := newTestClient(ft)

	r, err := c.Send(context.Background(), core.Action{Method: core.MethodGetMe})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if r.Decoded {
		t.Error("reply should not be decoded")
	}
	if string(r.Raw) != "<html>proxy page</html>" {
		t.Errorf("raw = %q", r.Raw)
	}
	if err := r.Into(&core.User{}); !errors.Is(err, ErrMalformedResponseBody) {
		t.Errorf("into err = %v, want ErrMalformedResponseBody", err)
	}
}

func TestSendInvalidStatus(t *testing.T) {
	ft := &fakeTransport{status: http.StatusBadRequest, body: `{"ok":false,"description":"Bad Request: chat not found"}`}
	c := newTestClient(ft)

	_, err := c.SendText(context.Background(), 1, "x")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %#v", err)
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSendInvalidStatusWithoutJSON(t *testing.T) {
	ft := &fakeTransport{status: http.StatusBadGateway, body: "bad gateway"}
	_, err := newTestClient(ft).GetMe(context.Background())

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Description != "" || string(se.Body) != "bad gateway" {
		t.Errorf("status error = %+v", se)
	}
}

func TestSendTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	ft := &fakeTransport{err: cause}

	_, err := newTestClient(ft).SendText(context.Background(), 1, "x")
	if !errors.Is(err, ErrTransport) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want ErrTransport wrapping cause", err)
	}
}

func TestSendUnknownOperationSkipsTransport(t *testing.T) {
	ft := &fakeTransport{}
	_, err := newTestClient(ft).Send(context.Background(), core.Action{Method: "selfDestruct"})
	if !errors.Is(err, ErrUnknownOperationKind) {
		t.Fatalf("err = %v, want ErrUnknownOperationKind", err)
	}
	if len(ft.calls) != 0 {
		t.Errorf("transport called %d times, want 0", len(ft.calls))
	}
}

func TestRespondSkipsEmpty(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true}`}
	c := newTestClient(ft)

	if err := c.Respond(context.Background(), core.Action{}); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if len(ft.calls) != 0 {
		t.Errorf("transport called for empty action")
	}

	if err := c.Respond(context.Background(), core.Action{Method: core.MethodAnswerCallbackQuery, CallbackQueryID: "q"}); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if len(ft.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(ft.calls))
	}
}

func TestSendMedia(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true}`}
	c := newTestClient(ft)

	if _, err := c.SendMedia(context.Background(), core.KindAudio, 7, "file-1", WithCaption("song"), WithParseMode("HTML")); err != nil {
		t.Fatalf("send media: %v", err)
	}
	if !strings.Contains(ft.last(t).url, "/sendAudio?") {
		t.Errorf("url = %s", ft.last(t).url)
	}
	q := lastQuery(t, ft)
	if q.Get("audio") != "file-1" || q.Get("caption") != "song" || q.Get("parse_mode") != "HTML" {
		t.Errorf("query = %v", q)
	}

	if _, err := c.SendMedia(context.Background(), core.KindText, 7, "x"); !errors.Is(err, ErrUnknownOperationKind) {
		t.Errorf("err = %v, want ErrUnknownOperationKind", err)
	}
}

func TestSendLocationAndForward(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true}`}
	c := newTestClient(ft)

	if _, err := c.SendLocation(context.Background(), 1, 10.5, -3.25); err != nil {
		t.Fatalf("location: %v", err)
	}
	if q := lastQuery(t, ft); q.Get("longitude") != "10.5" || q.Get("latitude") != "-3.25" {
		t.Errorf("query = %v", q)
	}

	if _, err := c.ForwardMessage(context.Background(), 99, 1, 2); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if q := lastQuery(t, ft); q.Get("message_id") != "99" || q.Get("from_chat_id") != "1" || q.Get("chat_id") != "2" {
		t.Errorf("query = %v", q)
	}
}

func TestAnswerQueries(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true,"result":true}`}
	c := newTestClient(ft)

	if _, err := c.AnswerInlineQuery(context.Background(), "iq", "only"); err != nil {
		t.Fatalf("inline: %v", err)
	}
	want := `[{"type":"document","id":"0","title":"only","caption":"only"}]`
	if got := lastQuery(t, ft).Get("results"); got != want {
		t.Errorf("results = %s, want %s", got, want)
	}

	if _, err := c.AnswerCallbackQuery(context.Background(), "cb", "done"); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if q := lastQuery(t, ft); q.Get("callback_query_id") != "cb" || q.Get("text") != "done" {
		t.Errorf("query = %v", q)
	}
}

func TestSetCommandPairs(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true,"result":true}`}
	c := newTestClient(ft)

	if _, err := c.SetCommandPairs(context.Background(), []string{"start", "help"}, []string{"Start", "Help"}); err != nil {
		t.Fatalf("set commands: %v", err)
	}
	last := ft.last(t)
	if last.method != http.MethodPost {
		t.Errorf("method = %s, want POST", last.method)
	}
	want := `{"commands":[{"command":"start","description":"Start"},{"command":"help","description":"Help"}]}`
	if string(last.body) != want {
		t.Errorf("body = %s, want %s", last.body, want)
	}

	_, err := c.SetCommandPairs(context.Background(), []string{"a", "b"}, []string{"A"})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("err = %v, want ErrInvalidArguments", err)
	}
}

func TestGetCommandsAndMe(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true,"result":[{"command":"start","description":"Start"}]}`}
	c := newTestClient(ft)

	cmds, err := c.GetCommands(context.Background())
	if err != nil {
		t.Fatalf("get commands: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Command != "start" {
		t.Errorf("commands = %+v", cmds)
	}

	ft.body = `{"ok":true,"result":{"id":77,"is_bot":true,"username":"mybot"}}`
	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.ID != 77 || me.Username != "mybot" || !me.IsBot {
		t.Errorf("me = %+v", me)
	}
}

func TestGetUpdates(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true,"result":[{"update_id":5,"callback_query":{"id":"c","data":"x"}}]}`}
	c := newTestClient(ft)

	updates, err := c.GetUpdates(context.Background(), 5, 30)
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(updates) != 1 || updates[0].CallbackQuery == nil || updates[0].CallbackQuery.Data != "x" {
		t.Errorf("updates = %+v", updates)
	}

	ft.body = `{"ok":false,"description":"conflict"}`
	if _, err := c.GetUpdates(context.Background(), 0, 0); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus for ok=false", err)
	}
}

func TestTokenOnlyInURL(t *testing.T) {
	ft := &fakeTransport{body: `{"ok":true}`}
	c := NewClient("https://api.example.org", "my-secret-token", ft, testLogger())

	c.GetMe(context.Background())

	if got := ft.last(t).url; got != "https://api.example.org/botmy-secret-token/getMe" {
		t.Errorf("url = %s", got)
	}
}
