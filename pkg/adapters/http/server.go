package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/loom"
	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/registry"
	"github.com/aretw0/loom/pkg/store"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Sessions is the session lifecycle the server needs. *session.Manager implements it.
type Sessions[S, A any] interface {
	Create(ctx context.Context, id string) (string, *store.Store[S, A], error)
	Get(ctx context.Context, id string) (*store.Store[S, A], error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// ActionRequest is the body of POST /sessions/{id}/actions.
type ActionRequest struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// CreateRequest is the optional body of POST /sessions.
type CreateRequest struct {
	ID string `json:"id,omitempty"`
}

// SessionResponse carries a session ID and its state.
type SessionResponse[S any] struct {
	ID    string `json:"id"`
	State S      `json:"state"`
}

// Server exposes sessions of one store type over JSON and SSE.
type Server[S, A any] struct {
	Sessions Sessions[S, A]
	Actions  *registry.Registry[A]
	Logger   *slog.Logger
}

type options struct {
	metrics http.Handler
	mounts  []mount
	logger  *slog.Logger
}

type mount struct {
	prefix  string
	handler http.Handler
}

// Option configures the handler.
type Option func(*options)

// WithMetrics mounts h under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(o *options) {
		o.metrics = h
	}
}

// WithMount serves h under prefix. h sees the path with prefix stripped.
func WithMount(prefix string, h http.Handler) Option {
	return func(o *options) {
		o.mounts = append(o.mounts, mount{prefix: prefix, handler: h})
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the sessions.
func NewHandler[S, A any](sessions Sessions[S, A], actions *registry.Registry[A], opts ...Option) http.Handler {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	server := &Server[S, A]{
		Sessions: sessions,
		Actions:  actions,
		Logger:   o.logger,
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/actions", server.ListActions)
	if o.metrics != nil {
		r.Handle("/metrics", o.metrics)
	}
	for _, m := range o.mounts {
		r.Mount(m.prefix, http.StripPrefix(m.prefix, m.handler))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.ListSessions)
		r.Post("/", server.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/state", server.GetState)
			r.Post("/actions", server.SendAction)
			r.Get("/events", server.SubscribeEvents)
			r.Delete("/", server.DeleteSession)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server[S, A]) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server[S, A]) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "loom-http",
		"version": strings.TrimSpace(loom.Version),
	})
}

// ListActions handles GET /actions.
func (s *Server[S, A]) ListActions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Actions.Names())
}

// ListSessions handles GET /sessions.
func (s *Server[S, A]) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles POST /sessions.
func (s *Server[S, A]) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateRequest
	if err := decodeBody(r, &body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("CreateSession: Invalid request body", "err", err)
		return
	}

	id, st, err := s.Sessions.Create(r.Context(), body.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionResponse[S]{ID: id, State: st.Value()})
}

// GetState handles GET /sessions/{id}/state.
func (s *Server[S, A]) GetState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse[S]{ID: id, State: st.Value()})
}

// SendAction handles POST /sessions/{id}/actions. The response carries the
// state after the action and its synchronous follow-ups were applied.
func (s *Server[S, A]) SendAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body ActionRequest
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("SendAction: Invalid request body", "err", err)
		return
	}

	action, err := s.Actions.Decode(body.Type, body.Payload)
	if err != nil {
		s.fail(w, err)
		return
	}

	st, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := st.Send(action); err != nil {
		s.fail(w, err)
		return
	}

	s.Logger.Debug("SendAction: Dispatched", "session_id", id, "action", body.Type)
	s.writeJSON(w, http.StatusOK, SessionResponse[S]{ID: id, State: st.Value()})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server[S, A]) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE). Every state change
// is pushed as a JSON data line. Slow clients lose intermediate states, never
// the stream.
func (s *Server[S, A]) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	st, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}

	ch := make(chan []byte, 16)
	sub := st.Subscribe(func(state S) {
		data, err := json.Marshal(state)
		if err != nil {
			s.Logger.Error("SSE: Failed to encode state", "session_id", id, "err", err)
			return
		}
		select {
		case ch <- data:
		default:
			s.Logger.Warn("SSE: Client buffer full, dropping message", "session_id", id)
		}
	})
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.Logger.Info("SSE: Subscribed to session", "session_id", id)

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: Client disconnected", "session_id", id)
			return
		case data := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func (s *Server[S, A]) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}

// fail maps domain errors to status codes.
func (s *Server[S, A]) fail(w http.ResponseWriter, err error) {
	var decodeErr *domain.ActionDecodeError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownAction), errors.As(err, &decodeErr):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionExists), errors.Is(err, domain.ErrStoreClosed):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("Request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}
