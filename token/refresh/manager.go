package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrExpired = errors.New("refresh token expired")

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo        Repo
	tokenLength int
	expiry      time.Duration
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, tokenLength int, expiry time.Duration) *Manager {
	return &Manager{
		repo:        repo,
		tokenLength: tokenLength,
		expiry:      expiry,
	}
}

// Create generates a new refresh token and stores it
func (m *Manager) Create(userID string) (string, error) {
	// Delete existing refresh token for this user (single refresh token per user)
	if existingToken, err := m.repo.GetByUserID(userID); err == nil && existingToken != nil {
		if err := m.repo.Delete(existingToken.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenStr, nil
}

// Rotate validates token, invalidates it and issues its replacement.
// It returns the user the token belonged to together with the new token.
func (m *Manager) Rotate(token string) (userID string, newToken string, err error) {
	stored, err := m.repo.Get(token)
	if err != nil {
		return "", "", err
	}
	if m.IsExpired(stored) {
		_ = m.repo.Delete(token)
		return "", "", ErrExpired
	}
	newToken, err = m.Create(stored.UserID)
	if err != nil {
		return "", "", err
	}
	return stored.UserID, newToken, nil
}

// Revoke removes a refresh token from storage
func (m *Manager) Revoke(token string) error {
	return m.repo.Delete(token)
}

// IsExpired checks if a refresh token has outlived the configured expiry
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.expiry
}

// RevokeUser removes whatever refresh token the user currently holds
func (m *Manager) RevokeUser(userID string) error {
	stored, err := m.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return m.repo.Delete(stored.Token)
}
