// Package registry maps action names to decoders, so that actions can arrive
// from outside the process (HTTP, CLI, replay logs) as a name and a payload.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Decoder builds an action from a loosely typed payload.
type Decoder[A any] func(payload map[string]any) (A, error)

// Registry manages the known actions of one store.
type Registry[A any] struct {
	mu       sync.RWMutex
	decoders map[string]Decoder[A]
}

// New creates a new empty registry.
func New[A any]() *Registry[A] {
	return &Registry[A]{
		decoders: make(map[string]Decoder[A]),
	}
}

// Register adds a decoder under name.
// If a decoder with the same name exists, it is overwritten.
func (r *Registry[A]) Register(name string, dec Decoder[A]) *Registry[A] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[name] = dec
	return r
}

// Decode looks up name and builds the action.
// Returns domain.ErrUnknownAction for unregistered names and a
// *domain.ActionDecodeError when the payload does not fit.
func (r *Registry[A]) Decode(name string, payload map[string]any) (A, error) {
	r.mu.RLock()
	dec, ok := r.decoders[name]
	r.mu.RUnlock()

	if !ok {
		var zero A
		return zero, fmt.Errorf("%w: %s", domain.ErrUnknownAction, name)
	}

	a, err := dec(payload)
	if err != nil {
		var zero A
		return zero, &domain.ActionDecodeError{Name: name, Err: err}
	}
	return a, nil
}

// Names returns the registered names in sorted order.
func (r *Registry[A]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Constant decodes every payload to a.
func Constant[A any](a A) Decoder[A] {
	return func(map[string]any) (A, error) { return a, nil }
}

// Payload decodes the payload into T with mapstructure and hands it to build.
// Fields are matched by their json tag; numbers and strings are converted
// loosely, since JSON bodies carry every number as float64 and CLIs pass strings.
// Unknown fields are rejected.
func Payload[T, A any](build func(T) A) Decoder[A] {
	return func(payload map[string]any) (A, error) {
		var v T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &v,
			TagName:          "json",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			var zero A
			return zero, err
		}
		if err := dec.Decode(payload); err != nil {
			var zero A
			return zero, err
		}
		return build(v), nil
	}
}
