package reducer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
)

// Logging wraps r so that every action also yields a log effect recording the
// action and the updated state. The state is rendered when the reducer runs,
// so later mutations never leak into the line. The log effect comes last and
// the wrapped reducer's effects keep their order.
func Logging[S, A any](r Reducer[S, A], logger *slog.Logger) Reducer[S, A] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(state *S, action A) []*effect.Effect[A] {
		effects := r(state, action)

		name := domain.ActionName(action)
		rendered := fmt.Sprintf("%+v", action)
		snapshot := fmt.Sprintf("%+v", *state)

		return append(slices.Clip(effects), effect.FireAndForget[A](func(ctx context.Context) {
			logger.InfoContext(ctx, "Action applied",
				"action", name,
				"payload", rendered,
				"state", snapshot,
			)
		}))
	}
}

// WithLogging is Logging as a HigherOrder, for use with Compose.
func WithLogging[S, A any](logger *slog.Logger) HigherOrder[S, A] {
	return func(r Reducer[S, A]) Reducer[S, A] {
		return Logging(r, logger)
	}
}
