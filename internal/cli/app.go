package cli

import (
	"log/slog"

	"github.com/aretw0/loom/internal/demo/app"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/observability"
	"github.com/aretw0/loom/pkg/persistence/middleware"
	"github.com/aretw0/loom/pkg/session"
	"github.com/aretw0/loom/pkg/store"
)

// Key scopes inside the shared snapshot backend.
const (
	sessionScope   = "session."
	favoritesScope = "favorites."
)

// Manager runs demo app sessions.
type Manager = session.Manager[app.State, app.Action]

// newManager wires the demo app onto storage. Effect results are delivered on
// main, and hooks observe every session store.
func newManager(storage *Storage, main effect.Executor, logger *slog.Logger, hooks ...domain.Hooks) *Manager {
	env := app.Environment{
		Work:      effect.Background,
		Main:      main,
		Snapshots: middleware.NewPrefixMiddleware(favoritesScope)(storage.Snapshots),
		Logger:    logger,
	}

	storeOpts := []store.Option{
		store.WithLogger(logger),
		store.WithHooks(observability.LogHooks(logger)),
	}
	for _, h := range hooks {
		storeOpts = append(storeOpts, store.WithHooks(h))
	}

	opts := []session.Option{
		session.WithSnapshots(middleware.NewPrefixMiddleware(sessionScope)(storage.Snapshots)),
		session.WithStoreOptions(storeOpts...),
		session.WithLogger(logger),
	}
	if storage.Locker != nil {
		opts = append(opts, session.WithLocker(storage.Locker))
	}
	return session.NewManager(app.Reducer(env), app.NewState, opts...)
}
