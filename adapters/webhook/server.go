package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jdelaire/tgbot/core"
)

const (
	// MaxPayloadBytes caps the size of an inbound update.
	MaxPayloadBytes = 1 << 20

	// SecretHeader carries the secret_token configured with setWebhook.
	SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

	DefaultPath = "/webhook"
)

// Dispatcher turns an update into the action to reply with.
type Dispatcher interface {
	Dispatch(ctx context.Context, u *core.Update) (core.Action, error)
}

// Server receives webhook updates and answers each one with the dispatched
// action as the response body.
type Server struct {
	addr       string
	path       string
	secret     string
	dispatcher Dispatcher
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithPath mounts the update endpoint somewhere other than DefaultPath.
func WithPath(path string) Option {
	return func(s *Server) { s.path = path }
}

// WithSecret rejects requests whose SecretHeader does not match.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = secret }
}

// New creates a webhook server listening on addr.
func New(addr string, d Dispatcher, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		addr:       addr,
		path:       DefaultPath,
		dispatcher: d,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(assignRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Post(s.path, s.handleUpdate)

	return r
}

// Handler returns the router, for tests and for mounting elsewhere.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("webhook listening", "addr", ln.Addr().String(), "path", s.path)
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	if s.secret != "" && r.Header.Get(SecretHeader) != s.secret {
		s.logger.Warn("webhook secret mismatch", "request_id", reqID)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxPayloadBytes+1))
	if err != nil {
		s.logger.Warn("read webhook body", "request_id", reqID, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if len(data) > MaxPayloadBytes {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	var u core.Update
	if err := json.Unmarshal(data, &u); err != nil {
		s.logger.Warn("invalid update", "request_id", reqID, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	action, err := s.dispatcher.Dispatch(r.Context(), &u)
	if err != nil {
		// Non-2xx answers make Telegram redeliver the update.
		s.logger.Warn("dispatch failed", "request_id", reqID, "update_id", u.UpdateID, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if action.IsEmpty() {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.logger.Debug("webhook reply", "request_id", reqID, "update_id", u.UpdateID, "method", action.Method)
	writeJSON(w, http.StatusOK, action)
}

// assignRequestID seeds middleware.RequestID with a UUID.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			r.Header.Set(middleware.RequestIDHeader, uuid.New().String())
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
