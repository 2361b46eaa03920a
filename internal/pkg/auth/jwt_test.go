// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func jwtTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager(jwtTestConfig())

	token, err := manager.GenerateAccessToken(7, "alice@example.com", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenNeverCarriesAdmin(t *testing.T) {
	manager := NewJWTManager(jwtTestConfig())

	token, err := manager.GenerateRefreshToken(7, "alice@example.com")
	require.NoError(t, err)

	claims, err := manager.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	manager := NewJWTManager(jwtTestConfig())

	access, err := manager.GenerateAccessToken(7, "alice@example.com", false)
	require.NoError(t, err)
	refresh, err := manager.GenerateRefreshToken(7, "alice@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateRefreshToken(access)
	require.Error(t, err)
	_, err = manager.ValidateAccessToken(refresh)
	require.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager(jwtTestConfig())
	token, err := manager.GenerateAccessToken(7, "alice@example.com", false)
	require.NoError(t, err)

	other := jwtTestConfig()
	other.JWT.Secret = "a-different-secret"
	_, err = NewJWTManager(other).ValidateAccessToken(token)
	require.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader("abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader(""))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
}
