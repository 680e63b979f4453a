package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := store.Save(ctx, "job-1/1年.xlsx", []byte("payload"), "")
	require.NoError(t, err)
	assert.Equal(t, "job-1/1年.xlsx", key)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Open(ctx, key)
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../outside.xlsx", "a/../../outside.xlsx", "/etc/passwd"} {
		_, err := store.Save(ctx, key, []byte("x"), "")
		assert.Error(t, err, key)
	}
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save(ctx, "old/a.xlsx", []byte("a"), "")
	require.NoError(t, err)
	_, err = store.Save(ctx, "new/b.xlsx", []byte("b"), "")
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old", "a.xlsx"), past, past))

	deleted, err := store.CleanupOlderThan(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old/a.xlsx"}, deleted)

	rc, err := store.Open(ctx, "new/b.xlsx")
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}
