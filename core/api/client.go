package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jdelaire/tgbot/core"
)

// Transport performs the raw HTTP exchange.
type Transport interface {
	Get(ctx context.Context, url string) (*HTTPResponse, error)
	Post(ctx context.Context, url string, header http.Header, body []byte) (*HTTPResponse, error)
}

// HTTPResponse is the status and body returned by a Transport.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
}

// Reply is the platform's answer to a successful call. When the body is not
// JSON, Decoded is false and only Raw is set.
type Reply struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`

	Raw     []byte `json:"-"`
	Decoded bool   `json:"-"`
}

// Into decodes the result field into v.
func (r *Reply) Into(v any) error {
	if !r.Decoded {
		return fmt.Errorf("%w: %q", ErrMalformedResponseBody, truncate(r.Raw, 64))
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponseBody, err)
	}
	return nil
}

// Client sends Actions to the Bot API.
type Client struct {
	builder   *Builder
	transport Transport
	logger    *slog.Logger
}

// NewClient creates a client for the bot identified by token.
func NewClient(baseURL, token string, transport Transport, logger *slog.Logger) *Client {
	return &Client{
		builder:   NewBuilder(baseURL, token),
		transport: transport,
		logger:    logger,
	}
}

// Send renders a and performs the call. Bodies that are not JSON are returned
// undecoded rather than treated as failures.
func (c *Client) Send(ctx context.Context, a core.Action) (*Reply, error) {
	req, err := c.builder.Build(a)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("api call", "method", a.Method, "http_method", req.Method)

	var resp *HTTPResponse
	if req.Method == http.MethodPost {
		resp, err = c.transport.Post(ctx, req.URL, req.Header, req.Body)
	} else {
		resp, err = c.transport.Get(ctx, req.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, a.Method, err)
	}

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{Method: a.Method, StatusCode: resp.StatusCode, Body: resp.Body}
		var body Reply
		if json.Unmarshal(resp.Body, &body) == nil {
			serr.Description = body.Description
		}
		return nil, serr
	}

	return decodeReply(resp.Body), nil
}

// Respond implements core.Responder. Empty actions are skipped.
func (c *Client) Respond(ctx context.Context, a core.Action) error {
	if a.IsEmpty() {
		return nil
	}
	_, err := c.Send(ctx, a)
	return err
}

func decodeReply(body []byte) *Reply {
	var r Reply
	if err := json.Unmarshal(body, &r); err != nil {
		return &Reply{Raw: body}
	}
	r.Raw = body
	r.Decoded = true
	return &r
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
