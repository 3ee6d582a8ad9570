// Package mcp exposes store sessions as Model Context Protocol tools, so an
// agent can list sessions, read their state and send them actions.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/loom"
	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/registry"
	"github.com/aretw0/loom/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ActionsURI is the resource listing the registered action names.
const ActionsURI = "loom://actions"

// Sessions is the session lifecycle the tools need. *session.Manager implements it.
type Sessions[S, A any] interface {
	Open(ctx context.Context, id string) (*store.Store[S, A], error)
	Get(ctx context.Context, id string) (*store.Store[S, A], error)
	List(ctx context.Context) ([]string, error)
}

// SessionArgs selects a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// SendArgs are the arguments of send_action.
type SendArgs struct {
	SessionID string         `json:"session_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// StateResult is the state of one session.
type StateResult[S any] struct {
	SessionID string `json:"session_id" jsonschema_description:"The session the state belongs to"`
	State     S      `json:"state" jsonschema_description:"The session state"`
}

// SessionsResult lists session IDs.
type SessionsResult struct {
	Sessions []string `json:"sessions" jsonschema_description:"Running and saved session IDs"`
}

// ActionsResult lists action names.
type ActionsResult struct {
	Actions []string `json:"actions" jsonschema_description:"Action names accepted by send_action"`
}

// Server wraps sessions of one store type as an MCP server.
type Server[S, A any] struct {
	sessions  Sessions[S, A]
	actions   *registry.Registry[A]
	settle    time.Duration
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*options)

type options struct {
	settle time.Duration
	logger *slog.Logger
}

// WithSettle bounds how long send_action waits for effects before it reports
// the state. Zero reports right after the synchronous part.
func WithSettle(d time.Duration) Option {
	return func(o *options) {
		o.settle = d
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewServer creates an MCP server over sessions, decoding actions with actions.
func NewServer[S, A any](sessions Sessions[S, A], actions *registry.Registry[A], opts ...Option) *Server[S, A] {
	o := options{
		settle: 2 * time.Second,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server[S, A]{
		sessions:  sessions,
		actions:   actions,
		settle:    o.settle,
		logger:    o.logger,
		mcpServer: server.NewMCPServer("loom-mcp", strings.TrimSpace(loom.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server[S, A]) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves JSON-RPC lines from in to out until ctx is done or in ends.
func (s *Server[S, A]) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// SSEHandler serves the SSE transport under /sse and /message. baseURL is the
// public URL the handler is mounted at, used to tell clients where to post.
func (s *Server[S, A]) SSEHandler(baseURL string) http.Handler {
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Handle("/sse", sse.SSEHandler())
	r.Handle("/message", sse.MessageHandler())
	return r
}

func (s *Server[S, A]) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the action names send_action accepts."),
		mcp.WithOutputSchema[ActionsResult](),
	), mcp.NewStructuredToolHandler(s.handleListActions))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List running and saved sessions."),
		mcp.WithOutputSchema[SessionsResult](),
	), mcp.NewStructuredToolHandler(s.handleListSessions))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Read the current state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[StateResult[S]](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("send_action",
		mcp.WithDescription("Send an action to a session, creating the session if needed, and return the resulting state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Action name, see list_actions")),
		mcp.WithObject("payload", mcp.Description("Action payload, for actions that take one")),
		mcp.WithOutputSchema[StateResult[S]](),
	), mcp.NewStructuredToolHandler(s.handleSendAction))
}

func (s *Server[S, A]) handleListActions(ctx context.Context, request mcp.CallToolRequest, args struct{}) (ActionsResult, error) {
	return ActionsResult{Actions: s.actions.Names()}, nil
}

func (s *Server[S, A]) handleListSessions(ctx context.Context, request mcp.CallToolRequest, args struct{}) (SessionsResult, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return SessionsResult{}, fmt.Errorf("list failed: %w", err)
	}
	return SessionsResult{Sessions: ids}, nil
}

func (s *Server[S, A]) handleGetState(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StateResult[S], error) {
	if args.SessionID == "" {
		return StateResult[S]{}, errors.New("session_id is required")
	}
	st, err := s.sessions.Get(ctx, args.SessionID)
	if err != nil {
		return StateResult[S]{}, err
	}
	return StateResult[S]{SessionID: args.SessionID, State: st.Value()}, nil
}

func (s *Server[S, A]) handleSendAction(ctx context.Context, request mcp.CallToolRequest, args SendArgs) (StateResult[S], error) {
	if args.SessionID == "" {
		return StateResult[S]{}, errors.New("session_id is required")
	}
	action, err := s.actions.Decode(args.Type, args.Payload)
	if err != nil {
		s.logger.Warn("MCP SendAction: Action rejected", "type", args.Type, "err", err)
		return StateResult[S]{}, err
	}

	st, err := s.sessions.Open(ctx, args.SessionID)
	if err != nil {
		return StateResult[S]{}, err
	}
	if err := st.Send(action); err != nil {
		return StateResult[S]{}, err
	}

	if s.settle > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, s.settle)
		defer cancel()
		if err := st.Wait(waitCtx); err != nil {
			s.logger.Debug("MCP SendAction: Effects still running", "session_id", args.SessionID, "err", err)
		}
	}

	s.logger.Debug("MCP SendAction: Dispatched", "session_id", args.SessionID, "action", args.Type)
	return StateResult[S]{SessionID: args.SessionID, State: st.Value()}, nil
}

func (s *Server[S, A]) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ActionsURI, "Registered actions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.actions.Names())
		if err != nil {
			return nil, fmt.Errorf("failed to encode actions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ActionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
