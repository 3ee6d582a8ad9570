// Package persistence turns snapshot stores into effects.
//
// Reducers never touch storage directly: they return the effects built here,
// and the outcome comes back as an action.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/ports"
)

// Encode renders v as a JSON snapshot.
func Encode[T any](v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a JSON snapshot.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return v, nil
}

// Save returns an effect that writes value under key and yields no action.
// value is encoded when the effect is built, so later mutations of the state
// it came from are not persisted. Failures are dropped; use SaveThen to see them.
func Save[A, T any](store ports.SnapshotStore, key string, value T) *effect.Effect[A] {
	data, encErr := Encode(value)
	return effect.FireAndForget[A](func(ctx context.Context) {
		if encErr != nil {
			return
		}
		_ = store.Save(ctx, key, data)
	})
}

// SaveThen is Save followed by toAction(err), where err is nil on success.
func SaveThen[T, A any](store ports.SnapshotStore, key string, value T, toAction func(error) A) *effect.Effect[A] {
	data, encErr := Encode(value)
	return effect.New(func(ctx context.Context, send func(A)) {
		if encErr != nil {
			send(toAction(encErr))
			return
		}
		send(toAction(store.Save(ctx, key, data)))
	})
}

// Load returns an effect that reads and decodes the snapshot under key and
// always yields toAction(value, err). A missing snapshot reports
// domain.ErrSnapshotNotFound.
func Load[T, A any](store ports.SnapshotStore, key string, toAction func(T, error) A) *effect.Effect[A] {
	return effect.Result(func(ctx context.Context) (T, error) {
		return load[T](ctx, store, key)
	}, toAction)
}

// LoadOptional is Load that yields onValue(value) on success and nothing otherwise.
func LoadOptional[T, A any](store ports.SnapshotStore, key string, onValue func(T) A) *effect.Effect[A] {
	return effect.Attempt(func(ctx context.Context) (T, error) {
		return load[T](ctx, store, key)
	}, onValue)
}

// Remove returns an effect that deletes the snapshot under key.
func Remove[A any](store ports.SnapshotStore, key string) *effect.Effect[A] {
	return effect.FireAndForget[A](func(ctx context.Context) {
		_ = store.Delete(ctx, key)
	})
}

func load[T any](ctx context.Context, store ports.SnapshotStore, key string) (T, error) {
	data, err := store.Load(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](data)
}
