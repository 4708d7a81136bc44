package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, "owner@atelier.fr")
	require.NoError(t, err)

	claims, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "owner@atelier.fr", claims.Email)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, "owner@atelier.fr")
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	require.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("test-secret", "not-a-token")
	require.Error(t, err)
}
