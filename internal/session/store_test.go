package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		tmpDir := t.TempDir()
		stateDir := filepath.Join(tmpDir, "state")

		store, err := NewStore(stateDir)
		require.NoError(t, err)
		assert.NotNil(t, store)

		info, err := os.Stat(stateDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})

	t.Run("creates state file on initialization", func(t *testing.T) {
		tmpDir := t.TempDir()
		_, err := NewStore(tmpDir)
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(tmpDir, "session.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})
}

func TestStore_GetSetRemove(t *testing.T) {
	t.Run("set then get round-trips", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("access_token", "abc"))

		value, err := store.Get("access_token")
		require.NoError(t, err)
		assert.Equal(t, "abc", value)
	})

	t.Run("missing key returns ErrKeyNotFound", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Get("missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("set overwrites, last write wins", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("access_token", "first"))
		require.NoError(t, store.Set("access_token", "second"))

		value, err := store.Get("access_token")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("remove deletes the value", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("refresh_token", "abc"))
		require.NoError(t, store.Remove("refresh_token"))

		_, err = store.Get("refresh_token")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("removing an absent key is not an error", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		assert.NoError(t, store.Remove("never-set"))
	})

	t.Run("values survive a new store over the same directory", func(t *testing.T) {
		tmpDir := t.TempDir()

		first, err := NewStore(tmpDir)
		require.NoError(t, err)
		require.NoError(t, first.Set("user", `{"id":1}`))

		second, err := NewStore(tmpDir)
		require.NoError(t, err)

		value, err := second.Get("user")
		require.NoError(t, err)
		assert.Equal(t, `{"id":1}`, value)
	})
}

func TestStore_AtomicSave(t *testing.T) {
	t.Run("no temp file left behind", func(t *testing.T) {
		tmpDir := t.TempDir()
		store, err := NewStore(tmpDir)
		require.NoError(t, err)

		require.NoError(t, store.Set("access_token", "abc"))
		require.NoError(t, store.Set("refresh_token", "def"))

		_, err = os.Stat(filepath.Join(tmpDir, "session.json.tmp"))
		assert.True(t, os.IsNotExist(err))
	})
}
