// internal/domain/user/service_test.go
package user

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	cfg := &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	return NewService(db, cfg), db
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{Name: "Alice", Email: "Alice@Example.com", Password: "secret123"}
}

func TestRegisterLowercasesEmailAndHidesPassword(t *testing.T) {
	svc, db := newTestService(t)

	resp, err := svc.Register(registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Empty(t, resp.User.Password)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	// Stored password is hashed, never plaintext
	var stored User
	require.NoError(t, db.First(&stored, resp.User.ID).Error)
	assert.NotEmpty(t, stored.Password)
	assert.NotEqual(t, "secret123", stored.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(registerRequest())
	require.NoError(t, err)

	// Same address in a different case still conflicts
	_, err = svc.Register(&RegisterRequest{Name: "Other", Email: "ALICE@example.com", Password: "secret456"})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConflict))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User.LastLoginAt)

	// Wrong password and unknown user get the same generic message
	_, wrongPass := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "nope"})
	_, unknown := svc.Login(&LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestLoginInactiveUser(t *testing.T) {
	svc, db := newTestService(t)
	resp, err := svc.Register(registerRequest())
	require.NoError(t, err)

	require.NoError(t, db.Model(&User{}).Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	_, err = svc.Login(&LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	registered, err := svc.Register(registerRequest())
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token
	_, err = svc.RefreshToken(registered.AccessToken)
	require.Error(t, err)
}

func TestGetProfile(t *testing.T) {
	svc, _ := newTestService(t)
	registered, err := svc.Register(registerRequest())
	require.NoError(t, err)

	profile, err := svc.GetProfile(registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)
	assert.Empty(t, profile.Password)

	_, err = svc.GetProfile(999)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	registered, err := svc.Register(registerRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(registered.User.ID, "wrong", "newsecret1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	require.NoError(t, svc.ChangePassword(registered.User.ID, "secret123", "newsecret1"))

	_, err = svc.Login(&LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.Error(t, err)
	_, err = svc.Login(&LoginRequest{Email: "alice@example.com", Password: "newsecret1"})
	require.NoError(t, err)
}
