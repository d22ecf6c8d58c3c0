// Package store defines the checkpoint store interface used to persist
// iteration state between generation runs. Implementations live under
// internal/platform. The store is strictly best-effort: no invariant in
// the generation core depends on it being durable or even present.
package store
