package users_test

import (
	"testing"

	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "valid", password: "Secret123"},
		{name: "too short", password: "Ab1", wantErr: "at least 8 characters"},
		{name: "no upper", password: "secret123", wantErr: "uppercase"},
		{name: "no lower", password: "SECRET123", wantErr: "lowercase"},
		{name: "no number", password: "SecretPass", wantErr: "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := users.HashPassword("Secret123")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("Secret123", hash))
	require.False(t, users.CheckPasswordHash("secret123", hash))
}

func TestDisplayName(t *testing.T) {
	var nilUser *users.User
	require.Equal(t, "", nilUser.DisplayName())

	u := &users.User{Email: "admin@example.com"}
	require.Equal(t, "admin@example.com", u.DisplayName())

	u.FirstName, u.LastName = "Ada", "Lovelace"
	require.Equal(t, "Ada Lovelace", u.DisplayName())
}

func TestHasRestaurant(t *testing.T) {
	manager := &users.User{Role: users.RoleManager, RestaurantIDs: []string{"r-1"}}
	require.True(t, manager.HasRestaurant("r-1"))
	require.False(t, manager.HasRestaurant("r-2"))

	super := &users.User{Role: users.RoleSuperAdmin}
	require.True(t, super.HasRestaurant("r-2"))
}
