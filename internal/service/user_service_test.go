package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
	"github.com/pixelmuse/imagen_go_server/internal/testutil"
)

func TestUserService_GetProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	userRepo := repository.NewUserRepository(db)
	service := NewUserService(userRepo, testCreditsConfig())
	user := testutil.TestUser(t, db,
		testutil.WithUsername("profileuser"),
		testutil.WithCredits(42))

	profile, err := service.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "profileuser", profile.Username)
	assert.Equal(t, 42, profile.Credits)
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	userRepo := repository.NewUserRepository(db)
	service := NewUserService(userRepo, testCreditsConfig())

	_, err := service.GetProfile(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	userRepo := repository.NewUserRepository(db)
	service := NewUserService(userRepo, testCreditsConfig())
	user := testutil.TestUser(t, db, testutil.WithUsername("oldname"))

	newName := "newname"
	profile, err := service.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, "newname", profile.Username)
}

func TestUserService_UpdateProfile_UsernameTaken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	userRepo := repository.NewUserRepository(db)
	service := NewUserService(userRepo, testCreditsConfig())
	testutil.TestUser(t, db, testutil.WithUsername("taken"))
	user := testutil.TestUser(t, db, testutil.WithUsername("me"))

	taken := "taken"
	_, err := service.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestUserService_UploadAvatar_NoStorage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	userRepo := repository.NewUserRepository(db)
	service := NewUserService(userRepo, testCreditsConfig())
	user := testutil.TestUser(t, db)

	_, err := service.UploadAvatar(user.ID, nil, "avatar.png")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
