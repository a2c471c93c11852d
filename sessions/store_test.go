package sessions_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

// backends returns one fresh KV per implementation so every Store test runs against all of them
func backends(t *testing.T) map[string]sessions.KV {
	t.Helper()

	fileKV, err := sessions.NewFileKV(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	sqliteKV, err := sessions.NewSQLiteKV(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteKV.Close() })

	return map[string]sessions.KV{
		"memory": sessions.NewMemoryKV(),
		"file":   fileKV,
		"sqlite": sqliteKV,
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := sessions.NewStore(kv)

			err := store.Save(sessions.Session{
				AccessToken:  "a",
				RefreshToken: "b",
				User:         &users.User{FirstName: "X"},
			})
			require.NoError(t, err)

			got := store.Load()
			require.Equal(t, "a", got.AccessToken)
			require.Equal(t, "b", got.RefreshToken)
			require.NotNil(t, got.User)
			require.Equal(t, "X", got.User.FirstName)
			require.True(t, got.Authenticated())
		})
	}
}

func TestStore_ClearThenLoadIsEmpty(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := sessions.NewStore(kv)
			require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: "x@example.com"}}))

			require.NoError(t, store.Clear())

			got := store.Load()
			require.Equal(t, sessions.Session{}, got)
			require.Nil(t, got.User)
			require.False(t, got.Authenticated())
		})
	}
}

func TestStore_ReplaceDropsEmptyFields(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := sessions.NewStore(kv)
			require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: "x@example.com"}}))

			require.NoError(t, store.Replace(sessions.Session{AccessToken: "a2", RefreshToken: "b2"}))

			got := store.Load()
			require.Equal(t, sessions.Tokens{AccessToken: "a2", RefreshToken: "b2"}, got.Tokens())
			require.Nil(t, got.User)
		})
	}
}

// failingKV refuses writes to one key
type failingKV struct {
	*sessions.MemoryKV
	failKey string
}

func (f *failingKV) Set(key, value string) error {
	if key == f.failKey {
		return fmt.Errorf("write %s refused", key)
	}
	return f.MemoryKV.Set(key, value)
}

func TestStore_ReplaceRestoresPreviousSessionOnFailedWrite(t *testing.T) {
	kv := &failingKV{MemoryKV: sessions.NewMemoryKV()}
	store := sessions.NewStore(kv)
	prior := sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: "x@example.com"}}
	require.NoError(t, store.Save(prior))

	// The access token is written before the refresh token write fails
	kv.failKey = sessions.KeyRefreshToken
	err := store.Replace(sessions.Session{AccessToken: "a2", RefreshToken: "b2", User: &users.User{Email: "y@example.com"}})

	require.ErrorIs(t, err, errors.ErrStorage)
	got := store.Load()
	require.Equal(t, prior.Tokens(), got.Tokens())
	require.Equal(t, "x@example.com", got.User.Email)
}

func TestStore_SaveLeavesEmptyFieldsUntouched(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: "x@example.com"}}))

	require.NoError(t, store.Save(sessions.Session{AccessToken: "a2"}))

	got := store.Load()
	require.Equal(t, "a2", got.AccessToken)
	require.Equal(t, "b", got.RefreshToken)
	require.Equal(t, "x@example.com", got.User.Email)
}

func TestStore_UpdateTokens(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b"}))

	require.NoError(t, store.UpdateAccessToken(""))
	require.NoError(t, store.UpdateRefreshToken(""))
	require.Equal(t, sessions.Tokens{AccessToken: "a", RefreshToken: "b"}, store.Load().Tokens())

	require.NoError(t, store.UpdateAccessToken("a2"))
	require.NoError(t, store.UpdateRefreshToken("b2"))
	require.Equal(t, sessions.Tokens{AccessToken: "a2", RefreshToken: "b2"}, store.Load().Tokens())

	require.NoError(t, store.SaveTokens(sessions.Tokens{AccessToken: "a3", RefreshToken: "b3"}))
	require.Equal(t, sessions.Tokens{AccessToken: "a3", RefreshToken: "b3"}, store.Load().Tokens())
}

func TestStore_MalformedUserDegradesToNil(t *testing.T) {
	kv := sessions.NewMemoryKV()
	require.NoError(t, kv.Set(sessions.KeyAccessToken, "a"))
	require.NoError(t, kv.Set(sessions.KeyUser, "{not json"))

	got := sessions.NewStore(kv).Load()
	require.Equal(t, "a", got.AccessToken)
	require.Equal(t, "", got.RefreshToken)
	require.Nil(t, got.User)
}

func TestFileKV_CorruptDocumentDegradesToEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	kv, err := sessions.NewFileKV(path)
	require.NoError(t, err)
	store := sessions.NewStore(kv)

	require.Equal(t, sessions.Session{}, store.Load())

	// The next write replaces the corrupt document.
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b"}))
	require.Equal(t, "a", store.Load().AccessToken)
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	kv, err := sessions.NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, sessions.NewStore(kv).Save(sessions.Session{AccessToken: "a", RefreshToken: "b"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := sessions.NewFileKV(path)
	require.NoError(t, err)
	require.Equal(t, sessions.Tokens{AccessToken: "a", RefreshToken: "b"}, sessions.NewStore(reopened).Load().Tokens())
}

func TestSQLiteKV_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	kv, err := sessions.NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, sessions.NewStore(kv).Save(sessions.Session{AccessToken: "a", RefreshToken: "b"}))
	require.NoError(t, kv.Close())

	reopened, err := sessions.NewSQLiteKV(path)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, sessions.Tokens{AccessToken: "a", RefreshToken: "b"}, sessions.NewStore(reopened).Load().Tokens())
}
