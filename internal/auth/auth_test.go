package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventify/eventify/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Generate("user-123", model.RoleOrganizer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, model.RoleOrganizer, claims.Role)
	assert.Equal(t, model.Identity{ID: "user-123", Role: model.RoleOrganizer}, claims.Identity())
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Generate("user-123", model.RoleUser)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Generate("user-123", model.RoleUser)
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, CheckPassword("correct-horse", hash))
	assert.False(t, CheckPassword("wrong-horse", hash))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestNewResetToken(t *testing.T) {
	plain, hash, expires, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, plain, 40, "20 random bytes hex encoded")
	assert.Equal(t, HashResetToken(plain), hash)
	assert.NotEqual(t, plain, hash)
	assert.WithinDuration(t, time.Now().Add(ResetTokenTTL), expires, 5*time.Second)

	// Tokens must not repeat.
	plain2, _, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, plain2)
}

func TestHashResetTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashResetToken("abc"), HashResetToken("abc"))
	assert.NotEqual(t, HashResetToken("abc"), HashResetToken("abd"))
}
