package user

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/test_utils"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, NewRepository(db)
}

func TestRepositoryImpl_CreateAndGetUser(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)

	// when
	id, err := repo.CreateUser(ctx, User{Uid: "3f0e4e5a-6f7c-4b8e-9a1d-2c3b4a5d6e7f", Name: "Ada", Email: "ada@example.com", HourlyRate: hourly("120.50")})
	require.NoError(t, err)

	// then
	stored, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
	assert.True(t, stored.HourlyRate.Valid)
	assert.Equal(t, "120.5", stored.HourlyRate.Decimal.String())

	byUid, err := repo.GetUserByUid(ctx, "3f0e4e5a-6f7c-4b8e-9a1d-2c3b4a5d6e7f")
	require.NoError(t, err)
	assert.Equal(t, id, byUid.Id)
}

func TestRepositoryImpl_NullRate(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	id, err := repo.CreateUser(ctx, User{Uid: "uid-1", Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	stored, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.HourlyRate.Valid)
}

func TestRepositoryImpl_DuplicatedEmail(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	_, err := repo.CreateUser(ctx, User{Uid: "uid-1", Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, User{Uid: "uid-2", Name: "Bob 2", Email: "bob@example.com"})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepositoryImpl_UpdateAndDelete(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	id, err := repo.CreateUser(ctx, User{Uid: "uid-1", Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	updated, err := repo.UpdateUser(ctx, User{Id: id, Name: "Robert", Email: "robert@example.com", HourlyRate: hourly("80")})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", updated.Uid)

	users, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Robert", users[0].Name)

	require.NoError(t, repo.DeleteUser(ctx, id))
	assert.ErrorIs(t, repo.DeleteUser(ctx, id), ErrUserNotFound)
	_, err = repo.GetUser(ctx, id)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.UpdateUser(ctx, User{Id: id, Name: "Ghost", Email: "ghost@example.com"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
