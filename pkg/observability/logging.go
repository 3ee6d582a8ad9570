package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/loom/pkg/domain"
)

// LogHooks returns store hooks that log every event at debug level, and drops at warn.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action",
				"store", e.Store,
				"action", e.Name,
				"action_id", e.ID,
				"duration", e.Duration,
				"effects", e.Effects,
			)
		},
		OnEffectStart: func(ctx context.Context, e *domain.EffectEvent) {
			logger.DebugContext(ctx, "effect_start",
				"store", e.Store,
				"action", e.Action,
				"action_id", e.ActionID,
				"index", e.Index,
			)
		},
		OnDrop: func(ctx context.Context, e *domain.DropEvent) {
			logger.WarnContext(ctx, "action_dropped",
				"store", e.Store,
				"action", e.Name,
				"reason", e.Reason,
			)
		},
	}
}
