package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/phrazzld/ankigen/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := New("")
	assert.Error(t, err)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "session-1", []byte(`{"topic":"Math"}`)))

	blob, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, `{"topic":"Math"}`, string(blob))
}

func TestSaveReplacesPriorBlob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "session-1", []byte("first")))
	require.NoError(t, s.Save(ctx, "session-1", []byte("second")))

	blob, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "second", string(blob))
}

func TestLoadMissingSession(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "session-1", []byte("state")))
	require.NoError(t, s.Delete(ctx, "session-1"))

	_, err := s.Load(ctx, "session-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, "session-1"))
}

func TestList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "a", []byte("aa")))
	require.NoError(t, s.Save(ctx, "b", []byte("bbbb")))

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	sizes := map[string]int{}
	for _, info := range infos {
		sizes[info.SessionID] = info.Size
		assert.False(t, info.UpdatedAt.IsZero())
	}
	assert.Equal(t, 2, sizes["a"])
	assert.Equal(t, 4, sizes["b"])
}

func TestOperationsAfterClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "double close is safe")

	assert.ErrorIs(t, s.Save(ctx, "x", []byte("y")), store.ErrStoreClosed)
	_, err := s.Load(ctx, "x")
	assert.ErrorIs(t, err, store.ErrStoreClosed)
	assert.ErrorIs(t, s.Delete(ctx, "x"), store.ErrStoreClosed)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}

func TestReopenPersistsState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "checkpoints.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "session-1", []byte("persisted")))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	blob, err := reopened.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(blob))
}
