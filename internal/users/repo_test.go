package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return NewRepository(conn)
}

func TestCreateDefaultsAndLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "yarden@example.com", PasswordHash: "hash", Name: "Yarden"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleUser, user.Role)
	assert.True(t, user.IsActive)

	byEmail, err := repo.FindByEmail(ctx, "yarden@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.Create(ctx, CreateUserDTO{Email: "yarden@example.com", PasswordHash: "hash", Name: "Dup"})
	assert.True(t, db.IsUniqueViolation(err, ""))

	hasAdmin, err := repo.HasRole(ctx, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.False(t, hasAdmin)

	_, err = repo.Create(ctx, CreateUserDTO{Email: "admin@example.com", PasswordHash: "hash", Name: "Admin", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	hasAdmin, err = repo.HasRole(ctx, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.True(t, hasAdmin)
}

func TestUpdateLastLogin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "a@example.com", PasswordHash: "hash", Name: "A"})
	require.NoError(t, err)
	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(at))

	dto := FromModel(got)
	assert.Equal(t, "A", dto.Name)
	assert.Nil(t, FromModel(nil))
}

func TestEmailIsNormalized(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "  Contact@WebYarden.com ", PasswordHash: "hash", Name: " Yarden "})
	require.NoError(t, err)
	assert.Equal(t, "contact@webyarden.com", user.Email)
	assert.Equal(t, "Yarden", user.Name)

	found, err := repo.FindByEmail(ctx, "CONTACT@webyarden.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "missing@webyarden.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestHasRoleIgnoresInactiveAccounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inactive := false
	_, err := repo.Create(ctx, CreateUserDTO{Email: "old-admin@example.com", PasswordHash: "hash", Name: "Old", Role: enums.UserRoleAdmin, IsActive: &inactive})
	require.NoError(t, err)

	hasAdmin, err := repo.HasRole(ctx, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.False(t, hasAdmin)
}
