package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAction      EventType = "action"
	EventEffectStart EventType = "effect_start"
	EventDrop        EventType = "drop"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Store     string    `json:"store"`
}

// ActionEvent is emitted after an action was reduced and before its effects start.
type ActionEvent struct {
	EventBase
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Action   any           `json:"-"`
	Duration time.Duration `json:"duration"`
	Effects  int           `json:"effects"`
}

// EffectEvent is emitted when the store starts one of the effects returned for an action.
type EffectEvent struct {
	EventBase
	ActionID string `json:"action_id"`
	Action   string `json:"action"`
	Index    int    `json:"index"`
}

// DropEvent is emitted when an action produced by an effect could not be delivered.
type DropEvent struct {
	EventBase
	Name   string `json:"name"`
	Action any    `json:"-"`
	Reason string `json:"reason"`
}

// Hooks defines callbacks for store observability.
// Every field is optional. Callbacks run on the dispatching goroutine and must not block.
type Hooks struct {
	OnAction      func(context.Context, *ActionEvent)
	OnEffectStart func(context.Context, *EffectEvent)
	OnDrop        func(context.Context, *DropEvent)
}

// MergeHooks fans every event out to all the given hooks, in order.
func MergeHooks(hooks ...Hooks) Hooks {
	var merged Hooks
	for _, h := range hooks {
		h := h
		if h.OnAction != nil {
			prev := merged.OnAction
			merged.OnAction = func(ctx context.Context, e *ActionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnAction(ctx, e)
			}
		}
		if h.OnEffectStart != nil {
			prev := merged.OnEffectStart
			merged.OnEffectStart = func(ctx context.Context, e *EffectEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnEffectStart(ctx, e)
			}
		}
		if h.OnDrop != nil {
			prev := merged.OnDrop
			merged.OnDrop = func(ctx context.Context, e *DropEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnDrop(ctx, e)
			}
		}
	}
	return merged
}
