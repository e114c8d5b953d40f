package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() JWTConfig {
	return JWTConfig{
		SecretKey:           "test-secret-key",
		AccessTokenDuration: 15 * time.Minute,
		Issuer:              "test-issuer",
	}
}

func TestJWTManager_GenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	config := testConfig()
	config.AccessTokenDuration = -time.Minute
	manager := NewJWTManager(config)

	token, err := manager.GenerateAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager(testConfig()).GenerateAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)

	other := testConfig()
	other.SecretKey = "another-secret"

	_, err = NewJWTManager(other).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_WrongIssuer(t *testing.T) {
	token, err := NewJWTManager(testConfig()).GenerateAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)

	other := testConfig()
	other.Issuer = "someone-else"

	_, err = NewJWTManager(other).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsNonAccessToken(t *testing.T) {
	config := testConfig()
	now := time.Now()
	claims := JWTClaims{
		UserID:    "user-1",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.SecretKey))
	require.NoError(t, err)

	_, err = NewJWTManager(config).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Garbage(t *testing.T) {
	_, err := NewJWTManager(testConfig()).ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthModule_HandleValidateToken(t *testing.T) {
	m := NewModule(testConfig())

	token, err := m.IssueAccessToken("user-2", "bob@example.com")
	require.NoError(t, err)

	resp, err := m.handleValidateToken(context.Background(), ValidateTokenRequest{Token: token}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "user-2", resp.UserID)
	assert.Equal(t, "bob@example.com", resp.Email)

	resp, err = m.handleValidateToken(context.Background(), ValidateTokenRequest{Token: "bogus"}, nil)
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "invalid token", resp.Error)
}
