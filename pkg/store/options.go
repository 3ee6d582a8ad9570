package store

import (
	"context"
	"log/slog"

	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
)

type config struct {
	name   string
	logger *slog.Logger
	hooks  domain.Hooks
	main   effect.Executor
	hot    bool
	ctx    context.Context
}

func defaultConfig() config {
	return config{
		name:   "store",
		logger: logging.NewNop(),
		main:   effect.Immediate,
		ctx:    context.Background(),
	}
}

// Option configures a root Store.
type Option func(*config)

// WithLogger sets the logger used for dispatch and drop diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName names the store in logs, hooks and metrics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithHooks registers lifecycle hooks. Repeated calls add to the previous hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(c *config) {
		c.hooks = domain.MergeHooks(c.hooks, hooks)
	}
}

// WithMainExecutor sets the executor on which effect actions are delivered
// back into the store. The default delivers inline.
func WithMainExecutor(exec effect.Executor) Option {
	return func(c *config) {
		if exec != nil {
			c.main = exec
		}
	}
}

// WithHotState backs the store with a hot cell: subscribers receive the
// current state as soon as they subscribe.
func WithHotState() Option {
	return func(c *config) {
		c.hot = true
	}
}

// WithColdState backs the store with a cold cell (the default): subscribers
// receive only subsequent changes.
func WithColdState() Option {
	return func(c *config) {
		c.hot = false
	}
}

// WithContext sets the parent context of the effects the store runs.
// Closing the store cancels it.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
