/*
Package session runs one store per session and keeps it persisted.

A Manager starts stores on demand, restores them from a ports.SnapshotStore,
and writes a snapshot after every state change. Lifecycle operations on a
session are serialized with per-ID locks, optionally backed by a
ports.DistributedLocker so that several replicas can share one snapshot store.
*/
package session
