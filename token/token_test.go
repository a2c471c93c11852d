package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/token"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

var testUser = users.User{
	ID:        "user-1",
	Email:     "admin@example.com",
	FirstName: "Ada",
	LastName:  "Lovelace",
	Role:      users.RoleOwner,
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner("secret"), "restaurant-api", time.Minute)

	raw, err := issuer.Issue(testUser, 3)
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "admin@example.com", claims.Email)
	require.Equal(t, "Ada Lovelace", claims.Name)
	require.Equal(t, "owner", claims.Role)
	require.Equal(t, int64(3), claims.Generation)
}

func TestIssuer_VerifyRejectsForeignSignature(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner("secret"), "restaurant-api", time.Minute)
	other := token.NewIssuer(token.NewHMACSigner("other-secret"), "restaurant-api", time.Minute)

	raw, err := other.Issue(testUser, 1)
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	require.Error(t, err)
}

func TestIssuer_VerifyRejectsExpired(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner("secret"), "restaurant-api", time.Minute)

	raw, err := issuer.Issue(testUser, 1)
	require.NoError(t, err)

	token.NowTimeFunc = func() time.Time { return time.Now().Add(2 * time.Minute) }
	defer func() { token.NowTimeFunc = time.Now }()

	_, err = issuer.Verify(raw)
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner("secret"), "restaurant-api", time.Hour)
	raw, err := issuer.Issue(testUser, 1)
	require.NoError(t, err)

	claims, err := token.Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", claims.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt(raw), 5*time.Second)

	_, err = token.Inspect("opaque-token")
	require.Error(t, err)
	require.True(t, token.ExpiresAt("opaque-token").IsZero())
	require.True(t, token.ExpiresAt("").IsZero())
}
