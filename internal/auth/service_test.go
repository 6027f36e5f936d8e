package auth

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/internal/users"
	pkgauth "github.com/signflowhq/signflow-backend/pkg/auth"
	"github.com/signflowhq/signflow-backend/pkg/config"
	"github.com/signflowhq/signflow-backend/pkg/db/models"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  full_name TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  is_admin INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "signflow-test",
		ExpirationMinutes: 60,
	}
}

// Argon parameters are clamped to their floors so hashing stays fast in tests.
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newAuthService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(users.NewRepository(db), testJWTConfig(), testPasswordConfig(), logg)
	require.NoError(t, err)
	return svc
}

func authAssertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, code, typed.Code())
}

func TestRegisterIssuesTokenAndPersistsUser(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	result, err := svc.Register(context.Background(), RegisterParams{
		Email:    "  Alice@Example.COM ",
		Password: "correct horse",
		FullName: " Alice Smith ",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, "Alice Smith", result.User.FullName)
	assert.True(t, result.User.IsActive)
	assert.NotEmpty(t, result.User.PasswordHash)
	assert.NotEqual(t, "correct horse", result.User.PasswordHash)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "bob@example.com",
		Password: "short",
	})
	authAssertCode(t, err, pkgerrors.CodeValidation)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "carol@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterParams{
		Email:    "CAROL@example.com",
		Password: "password456",
	})
	authAssertCode(t, err, pkgerrors.CodeConflict)
}

func TestLoginVerifiesPasswordAndRecordsLastLogin(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	registered, err := svc.Register(context.Background(), RegisterParams{
		Email:    "dave@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginParams{
		Email:    "Dave@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", registered.User.ID).Error)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "erin@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginParams{
		Email:    "erin@example.com",
		Password: "wrong-password",
	})
	authAssertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Login(context.Background(), LoginParams{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	authAssertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	registered, err := svc.Register(context.Background(), RegisterParams{
		Email:    "frank@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", registered.User.ID).
		UpdateColumn("is_active", false).Error)

	_, err = svc.Login(context.Background(), LoginParams{
		Email:    "frank@example.com",
		Password: "password123",
	})
	authAssertCode(t, err, pkgerrors.CodeUnauthorized)
}
