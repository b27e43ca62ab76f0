package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, exp, err := m.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	other, _, err := NewJWTManager("other", time.Hour).GenerateAccessToken("user-1", "s")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(other)
	assert.Error(t, err, "wrong signature")

	expired, _, err := NewJWTManager("secret", -time.Minute).GenerateAccessToken("user-1", "s")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(expired)
	assert.Error(t, err, "expired")

	anonymous, _, err := m.GenerateAccessToken("", "s")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(anonymous)
	assert.Error(t, err, "missing uid")

	_, err = m.ParseAccessToken("not.a.jwt")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("testpass123")
	require.NoError(t, err)
	assert.NotEqual(t, "testpass123", hash)
	assert.True(t, CompareHashAndPassword(hash, "testpass123"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))
}

func TestNewRedisClient_EmptyAddrDisables(t *testing.T) {
	assert.Nil(t, NewRedisClient("", "", 0))
	assert.NotNil(t, NewRedisClient("localhost:6379", "", 0))
}
