package domain

import "fmt"

// Named is implemented by actions that want a stable name in logs, metrics and registries.
// Actions that do not implement it are named after their dynamic type (e.g. "counter.Increment").
type Named interface {
	ActionName() string
}

// ActionName returns the display name of an action.
func ActionName(action any) string {
	if n, ok := action.(Named); ok {
		return n.ActionName()
	}
	return fmt.Sprintf("%T", action)
}
