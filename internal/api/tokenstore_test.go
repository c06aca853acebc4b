package api

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmsbilling/pkg/models"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewFileTokenStore(path)

	t.Run("missing file means logged out", func(t *testing.T) {
		token, err := store.Token()
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, store.Save(models.AuthTokens{AccessToken: "tok-1", RefreshToken: "ref-1"}))

		token, err := store.Token()
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	})

	t.Run("token file is owner-only", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file modes are not meaningful on windows")
		}
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("clear removes tokens", func(t *testing.T) {
		require.NoError(t, store.Clear())

		token, err := store.Token()
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("clearing an empty store succeeds", func(t *testing.T) {
		require.NoError(t, store.Clear())
	})
}

func TestFileTokenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	store := NewFileTokenStore(path)
	_, err := store.Token()
	require.Error(t, err)
}
