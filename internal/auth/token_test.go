package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietart/artmarket/internal/domain"
)

func testManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func testUser() *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Email: "buyer@example.com",
		Role:  domain.RoleUser,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := testManager()
	user := testUser()

	token, err := tm.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := tm.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, domain.RoleUser, identity.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := testManager()
	user := testUser()
	user.Role = domain.RoleAdmin

	token, expiresAt, err := tm.GenerateRefreshToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	identity, err := tm.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.True(t, identity.IsAdmin())
}

func TestTokensUseSeparateSecrets(t *testing.T) {
	tm := testManager()
	user := testUser()

	access, err := tm.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, _, err := tm.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = tm.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	tm := testManager()

	_, err := tm.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
