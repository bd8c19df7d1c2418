package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jdelaire/tgbot/core/api"
)

// DefaultTimeout leaves room for a 30s long poll.
const DefaultTimeout = 35 * time.Second

// Transport performs Bot API calls over net/http.
type Transport struct {
	client *http.Client
}

// New creates a transport with DefaultTimeout.
func New() *Transport {
	return &Transport{client: &http.Client{Timeout: DefaultTimeout}}
}

// WithClient replaces the underlying HTTP client (for testing).
func (t *Transport) WithClient(c *http.Client) *Transport {
	t.client = c
	return t
}

func (t *Transport) Get(ctx context.Context, url string) (*api.HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return t.do(req)
}

func (t *Transport) Post(ctx context.Context, url string, header http.Header, body []byte) (*api.HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return t.do(req)
}

func (t *Transport) do(req *http.Request) (*api.HTTPResponse, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http %s: %w", req.Method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &api.HTTPResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
