/*
Package domain contains the shared vocabulary of the loom runtime.

It defines the sentinel errors returned by stores and adapters, the events a
store emits while dispatching, and the Hooks used to observe them. This package
is kept free of I/O and of the generic store machinery so that adapters
(metrics, HTTP, persistence) can depend on it without importing the core.

# Key Entities

  - Hooks: optional callbacks fired for reduced actions, started effects and dropped deliveries.
  - ActionEvent, EffectEvent, DropEvent: the payloads handed to Hooks.
  - Named: lets an action choose its own display name.
*/
package domain
