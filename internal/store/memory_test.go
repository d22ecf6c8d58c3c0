package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "session-1", []byte(`{"topic":"Addition"}`)))

	blob, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, `{"topic":"Addition"}`, string(blob))

	// Overwrite replaces the prior blob.
	require.NoError(t, s.Save(ctx, "session-1", []byte(`{"topic":"Subtraction"}`)))
	blob, err = s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, `{"topic":"Subtraction"}`, string(blob))

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "session-1", infos[0].SessionID)

	require.NoError(t, s.Delete(ctx, "session-1"))
	_, err = s.Load(ctx, "session-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreClosed(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	require.NoError(t, s.Close())

	err := s.Save(context.Background(), "s", []byte("x"))
	assert.ErrorIs(t, err, ErrStoreClosed)
}
