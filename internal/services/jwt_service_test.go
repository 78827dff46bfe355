package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-secret", time.Hour)

	token, err := svc.GenerateToken("user-1", 42, "rep@example.com", "Sales Rep")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, uint(42), claims.CompanyID)
	assert.Equal(t, "rep@example.com", claims.Email)
	assert.Equal(t, "Sales Rep", claims.Role)
}

func TestJWT_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-secret", -time.Minute)

	token, err := svc.GenerateToken("user-1", 1, "a@example.com", "Owner")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).GenerateToken("user-1", 1, "a@example.com", "Owner")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}
