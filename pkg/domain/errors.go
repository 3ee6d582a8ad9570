package domain

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a zero-value Store is used before a real one is injected.
var ErrNotInitialized = errors.New("store not initialized")

// ErrStoreClosed is returned when sending to a store (or a view of a store) that was closed.
var ErrStoreClosed = errors.New("store closed")

// ErrSnapshotNotFound is returned when a snapshot key cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrUnknownAction is returned when an action name has no registered decoder.
var ErrUnknownAction = errors.New("unknown action")

// ActionDecodeError represents a failure to build an action from an external payload.
type ActionDecodeError struct {
	Name string
	Err  error
}

func (e *ActionDecodeError) Error() string {
	return fmt.Sprintf("action '%s' has an invalid payload: %v", e.Name, e.Err)
}

func (e *ActionDecodeError) Unwrap() error {
	return e.Err
}

// ErrSessionNotFound is returned when a session is neither running nor persisted.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when creating a session whose ID is already taken.
var ErrSessionExists = errors.New("session already exists")
