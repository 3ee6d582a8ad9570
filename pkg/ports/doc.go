/*
Package ports defines the driven ports (interfaces) around a loom store.

These interfaces decouple stores and sessions from concrete backends, so the
same application can persist snapshots in memory, on disk, in SQLite or in Redis.

# Key Interfaces

  - SnapshotStore: persists encoded state snapshots by key.
  - DistributedLocker: serializes access to a session across replicas.
  - Dispatcher: anything that accepts actions, such as a Store or a view.
*/
package ports
