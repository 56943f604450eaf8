package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
	"github.com/pixelmuse/imagen_go_server/internal/testutil"
)

func setupAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
	}
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo, cfg)
}

func TestAuthService_Register_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := setupAuthService(t, db)

	resp, err := service.Register(&dto.RegisterRequest{
		Username: "newuser",
		Email:    "newuser@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Greater(t, resp.UserID, int64(0))

	// 新用户初始积分为 0，密码存的是哈希
	userRepo := repository.NewUserRepository(db)
	user, err := userRepo.GetByID(resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, user.Credits)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "password123", *user.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := setupAuthService(t, db)
	testutil.TestUser(t, db, testutil.WithEmail("taken@example.com"))

	_, err := service.Register(&dto.RegisterRequest{
		Username: "anotheruser",
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := setupAuthService(t, db)
	testutil.TestUser(t, db, testutil.WithUsername("taken"))

	_, err := service.Register(&dto.RegisterRequest{
		Username: "taken",
		Email:    "fresh@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_Login_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := setupAuthService(t, db)

	_, err := service.Register(&dto.RegisterRequest{
		Username: "loginuser",
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := service.Login(&dto.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "loginuser", resp.User.Username)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := setupAuthService(t, db)

	_, err := service.Register(&dto.RegisterRequest{
		Username: "loginuser",
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = service.Login(&dto.LoginRequest{
		Email:    "login@example.com",
		Password: "wrongpassword",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := setupAuthService(t, db)

	_, err := service.Login(&dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := setupAuthService(t, db)

	// GitHub 登录创建的账号没有密码，不能走密码登录
	user := testutil.TestUser(t, db,
		testutil.WithEmail("gh@example.com"),
		testutil.WithGithubID("gh_1"))
	require.NoError(t, db.Model(user).Update("password_hash", nil).Error)

	_, err := service.Login(&dto.LoginRequest{
		Email:    "gh@example.com",
		Password: "whatever123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
