package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/loom/internal/config"
	"github.com/aretw0/loom/internal/demo/app"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"

	loomhttp "github.com/aretw0/loom/pkg/adapters/http"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// ServeOptions configures the serve command.
type ServeOptions struct {
	// Listener, when set, is used instead of listening on the configured address.
	Listener net.Listener
	// Ready is called with the bound address once the server accepts requests.
	Ready func(addr string)
}

// Serve exposes demo app sessions over HTTP until ctx is done.
func Serve(ctx context.Context, cfg config.Config, opts ServeOptions, logger *slog.Logger) error {
	storage, err := OpenStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	var hooks []domain.Hooks
	var handlerOpts []loomhttp.Option
	handlerOpts = append(handlerOpts, loomhttp.WithLogger(logger))
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		hooks = append(hooks, metrics.Hooks())
		handlerOpts = append(handlerOpts, loomhttp.WithMetrics(observability.Handler(reg)))
	}

	// Requests run on their own goroutines; results are applied where they arrive.
	manager := newManager(storage, effect.Immediate, logger, hooks...)
	defer func() {
		if err := manager.CloseAll(context.Background()); err != nil {
			logger.Error("Failed to save sessions", "err", err)
		}
	}()

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.HTTP.Addr, err)
		}
	}

	if cfg.MCP.Enabled {
		tools := newMCPServer(manager, cfg, logger)
		handlerOpts = append(handlerOpts, loomhttp.WithMount("/mcp", tools.SSEHandler(localURL(ln.Addr())+"/mcp")))
		logger.Info("MCP tools mounted", "path", "/mcp/sse")
	}

	srv := &http.Server{
		Handler:           loomhttp.NewHandler(manager, app.Actions(), handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end when ctx does.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	logger.Info("HTTP server listening", "addr", ln.Addr().String())
	if opts.Ready != nil {
		opts.Ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// localURL is the http URL of addr, with an unspecified host replaced by localhost.
func localURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
