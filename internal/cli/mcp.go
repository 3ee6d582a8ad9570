package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/loom/internal/config"
	"github.com/aretw0/loom/internal/demo/app"
	"github.com/aretw0/loom/pkg/effect"

	loommcp "github.com/aretw0/loom/pkg/adapters/mcp"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	In  io.Reader
	Out io.Writer
}

func newMCPServer(manager *Manager, cfg config.Config, logger *slog.Logger) *loommcp.Server[app.State, app.Action] {
	opts := []loommcp.Option{loommcp.WithLogger(logger)}
	if cfg.MCP.Settle.Duration > 0 {
		opts = append(opts, loommcp.WithSettle(cfg.MCP.Settle.Duration))
	}
	return loommcp.NewServer(manager, app.Actions(), opts...)
}

// MCP serves demo app sessions as MCP tools over stdio until ctx is done or
// the input ends. Out carries only JSON-RPC; logs go to logger.
func MCP(ctx context.Context, cfg config.Config, opts MCPOptions, logger *slog.Logger) error {
	storage, err := OpenStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	manager := newManager(storage, effect.Immediate, logger)
	defer func() {
		if err := manager.CloseAll(context.Background()); err != nil {
			logger.Error("Failed to save sessions", "err", err)
		}
	}()

	logger.Info("MCP server listening (stdio)")
	return newMCPServer(manager, cfg, logger).ServeStdio(ctx, opts.In, opts.Out)
}
