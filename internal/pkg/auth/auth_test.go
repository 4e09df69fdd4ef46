// internal/pkg/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, err := m.GenerateToken(7, "admin", "admin@example.com", true, false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.IsStaff)
	assert.False(t, claims.IsSuperuser)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager(testSecret, -time.Minute)

	token, err := m.GenerateToken(1, "admin", "", true, false)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	other := NewJWTManager("another-secret-key-also-32-chars-long!!", time.Hour)

	token, err := m.GenerateToken(1, "admin", "", true, false)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	_, err := m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	token, err = ExtractTokenFromHeader("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	_, err = ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Token abc123")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Bearer")
	assert.Error(t, err)
}

func TestPasswordHashAndVerify(t *testing.T) {
	m := NewPasswordManager(4) // minimal cost keeps the test fast

	hash, err := m.HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, m.VerifyPassword(hash, "s3cret-password"))
	assert.False(t, m.VerifyPassword(hash, "wrong-password"))
}

func TestHashPasswordRejectsShort(t *testing.T) {
	m := NewPasswordManager(4)

	_, err := m.HashPassword("short")
	assert.Error(t, err)
}
