package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no checkpoint exists for a session ID.
var ErrNotFound = errors.New("checkpoint not found")

// ErrStoreClosed is returned when an operation is attempted on a closed store.
var ErrStoreClosed = errors.New("checkpoint store is closed")

// CheckpointInfo describes a stored checkpoint without its payload.
type CheckpointInfo struct {
	SessionID string
	UpdatedAt time.Time
	Size      int
}

// CheckpointStore persists serialized iteration state keyed by session ID,
// so a later run with the same identifier can resume instead of starting
// over. Payloads are opaque bytes; the caller owns the encoding.
type CheckpointStore interface {
	// Save writes the state blob for the session, replacing any prior blob.
	Save(ctx context.Context, sessionID string, state []byte) error

	// Load returns the last saved blob for the session.
	// Returns ErrNotFound when the session has no checkpoint.
	Load(ctx context.Context, sessionID string) ([]byte, error)

	// Delete removes the checkpoint for the session, if any.
	Delete(ctx context.Context, sessionID string) error

	// List returns metadata for all stored checkpoints.
	List(ctx context.Context) ([]CheckpointInfo, error)

	// Close releases underlying resources.
	Close() error
}
