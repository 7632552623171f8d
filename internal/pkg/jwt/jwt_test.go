package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_SSEToken(t *testing.T) {
	svc := NewJWTService("secret")

	token, expiresIn, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTService_AccessTokenIsNotAnSSEToken(t *testing.T) {
	svc := NewJWTService("secret")

	token, _, err := svc.GenerateAccessToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, _, err := NewJWTService("other").GenerateSSEToken("user-1")
	require.NoError(t, err)

	_, err = NewJWTService("secret").ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("secret").(*JWTService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}
