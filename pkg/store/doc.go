// Package store implements the runtime that owns application state.
//
// A root Store (New) holds one state value and one reducer. Actions are sent
// with Send, reduced one at a time, and the effects the reducer returns are
// started in order with the store's context. Actions produced by effects are
// delivered through the main executor back into Send, which is the only place
// the store recurses. Follow-ups are queued behind the action being applied,
// so a chain of actions is processed breadth first. There is no cycle
// detection: an effect that unconditionally re-triggers itself loops forever.
//
// Derived stores narrow a parent to a sub-state and sub-action. View is cold
// and recomputes its state from the parent on every read. Observe is hot and
// keeps its own copy current through a subscription.
package store
