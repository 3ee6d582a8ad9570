// Package effect models side effects as values.
//
// An Effect is a deferred, single-use computation that yields at most one
// follow-up action. Reducers return effects instead of performing I/O, and the
// store runs them, feeding any produced action back into Send.
//
// Where an effect runs, and where its action is delivered, are properties of
// the effect: use RunOn to move the work onto an Executor (for example
// Background) and ReceiveOn to move delivery onto another (for example a Queue
// acting as a main loop).
package effect
