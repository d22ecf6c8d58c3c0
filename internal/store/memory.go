package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory CheckpointStore used in tests and as the
// degraded mode when no durable store could be opened.
type MemoryStore struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	times  map[string]time.Time
	closed bool
}

// NewMemoryStore creates an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
		times: make(map[string]time.Time),
	}
}

// Save implements CheckpointStore.
func (s *MemoryStore) Save(_ context.Context, sessionID string, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	buf := make([]byte, len(state))
	copy(buf, state)
	s.blobs[sessionID] = buf
	s.times[sessionID] = time.Now().UTC()
	return nil
}

// Load implements CheckpointStore.
func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	blob, ok := s.blobs[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	buf := make([]byte, len(blob))
	copy(buf, blob)
	return buf, nil
}

// Delete implements CheckpointStore.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	delete(s.blobs, sessionID)
	delete(s.times, sessionID)
	return nil
}

// List implements CheckpointStore.
func (s *MemoryStore) List(_ context.Context) ([]CheckpointInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]CheckpointInfo, 0, len(s.blobs))
	for id, blob := range s.blobs {
		infos = append(infos, CheckpointInfo{
			SessionID: id,
			UpdatedAt: s.times[id],
			Size:      len(blob),
		})
	}
	return infos, nil
}

// Close implements CheckpointStore.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
