package tasks_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-repository-bun"
	tasks "github.com/goliatone/go-tasks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) (*bun.DB, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, tasks.RunMigrations(context.Background(), bunDB, tasks.GetMigrationsFS()))

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return bunDB, cleanup
}

func seedUser(t *testing.T, repo tasks.Users, email string, role tasks.RoleCode) *tasks.User {
	t.Helper()

	hash, err := tasks.HashPassword("super-secret-password")
	require.NoError(t, err)

	record, err := repo.Register(context.Background(), &tasks.User{
		Username:     email,
		Email:        email,
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, record.ID)

	return record
}

func TestUsersGetByIdentifier(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := tasks.NewUsersRepository(db)
	user := seedUser(t, repo, "pepe@example.com", tasks.RoleGeneralUser)

	ctx := context.Background()

	t.Run("by email", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, "pepe@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("by id", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
	})

	t.Run("by username", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, user.Username)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := repo.GetByIdentifier(ctx, "ghost@example.com")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUsersRegisterDefaults(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := tasks.NewUsersRepository(db)

	record, err := repo.Register(context.Background(), &tasks.User{
		Username: "norole",
		Email:    "norole@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, tasks.RoleGuest, record.Role, "missing role defaults to guest")
	assert.NotEqual(t, uuid.Nil, record.ID)
}

func TestUsersTrackLoginLifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := tasks.NewUsersRepository(db)
	user := seedUser(t, repo, "pepe@example.com", tasks.RoleGeneralUser)

	ctx := context.Background()

	require.NoError(t, repo.TrackAttemptedLogin(ctx, user))
	require.NoError(t, repo.TrackAttemptedLogin(ctx, &tasks.User{ID: user.ID, LoginAttempts: 1}))

	found, err := repo.GetByIdentifier(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, found.LoginAttempts)
	assert.NotNil(t, found.LoginAttemptAt)

	require.NoError(t, repo.TrackSuccessfulLogin(ctx, user))

	found, err = repo.GetByIdentifier(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, found.LoginAttempts, "successful login resets the counter")
	assert.Nil(t, found.LoginAttemptAt)
	assert.NotNil(t, found.LoggedInAt)
}

func TestUsersResetPassword(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := tasks.NewUsersRepository(db)
	user := seedUser(t, repo, "pepe@example.com", tasks.RoleGeneralUser)

	ctx := context.Background()

	newHash, err := tasks.HashPassword("another-secret-password")
	require.NoError(t, err)

	require.NoError(t, repo.ResetPassword(ctx, user.ID, newHash))

	found, err := repo.GetByIdentifier(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, newHash, found.PasswordHash)

	err = repo.ResetPassword(ctx, uuid.New(), newHash)
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersListAll(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := tasks.NewUsersRepository(db)
	seedUser(t, repo, "one@example.com", tasks.RoleAdministrator)
	seedUser(t, repo, "two@example.com", tasks.RoleManager)
	seedUser(t, repo, "three@example.com", tasks.RoleGeneralUser)

	records, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
