package refresh_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-admin-console/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func newManager() *refresh.Manager {
	return refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 32, time.Hour)
}

func TestManager_CreateReplacesPreviousToken(t *testing.T) {
	m := newManager()

	first, err := m.Create("user-1")
	require.NoError(t, err)
	require.Len(t, first, 64)

	second, err := m.Create("user-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, _, err = m.Rotate(first)
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestManager_RotateIsSingleUse(t *testing.T) {
	m := newManager()

	original, err := m.Create("user-1")
	require.NoError(t, err)

	userID, rotated, err := m.Rotate(original)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
	require.NotEqual(t, original, rotated)

	_, _, err = m.Rotate(original)
	require.ErrorIs(t, err, refresh.ErrNotFound)

	_, _, err = m.Rotate(rotated)
	require.NoError(t, err)
}

func TestManager_RotateRejectsExpired(t *testing.T) {
	m := newManager()

	original, err := m.Create("user-1")
	require.NoError(t, err)

	refresh.NowTimeFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	defer func() { refresh.NowTimeFunc = time.Now }()

	_, _, err = m.Rotate(original)
	require.ErrorIs(t, err, refresh.ErrExpired)
}

func TestManager_Revoke(t *testing.T) {
	m := newManager()

	original, err := m.Create("user-1")
	require.NoError(t, err)
	require.NoError(t, m.Revoke(original))
	require.ErrorIs(t, m.Revoke(original), refresh.ErrNotFound)
}

func TestManager_RevokeUser(t *testing.T) {
	m := newManager()

	original, err := m.Create("user-1")
	require.NoError(t, err)

	require.NoError(t, m.RevokeUser("user-1"))
	_, _, err = m.Rotate(original)
	require.ErrorIs(t, err, refresh.ErrNotFound)

	// Nothing left to revoke is not an error
	require.NoError(t, m.RevokeUser("user-1"))
}
