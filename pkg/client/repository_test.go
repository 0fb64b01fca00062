package client

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

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, *pgxpool.Pool) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, NewRepository(db), db
}

func assignClient(t *testing.T, ctx context.Context, db *pgxpool.Pool, projectId int, clientId int) {
	t.Helper()
	_, err := db.Exec(ctx, `UPDATE project SET client_id = $1 WHERE id = $2`, clientId, projectId)
	require.NoError(t, err)
}

func TestRepositoryImpl_ListCountsProjects(t *testing.T) {
	// given
	ctx, repo, db := setupTestRepository(t)
	acme, err := repo.Create(ctx, Client{Name: "Acme", ContactName: "Wile", Email: "wile@acme.test"})
	require.NoError(t, err)
	globex, err := repo.Create(ctx, Client{Name: "Globex"})
	require.NoError(t, err)
	assignClient(t, ctx, db, test_utils.InsertProject(t, ctx, db, "Website", "100"), acme.Id)
	assignClient(t, ctx, db, test_utils.InsertProject(t, ctx, db, "App", "120"), acme.Id)
	test_utils.InsertProject(t, ctx, db, "Internal", "80")

	// when
	clients, err := repo.List(ctx)

	// then
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Acme", clients[0].Name)
	assert.Equal(t, 2, clients[0].ProjectCount)
	assert.Equal(t, "wile@acme.test", clients[0].Email)
	assert.Equal(t, globex.Id, clients[1].Id)
	assert.Equal(t, 0, clients[1].ProjectCount)

	stored, err := repo.Get(ctx, acme.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ProjectCount)
}

func TestRepositoryImpl_UpdateAndDelete(t *testing.T) {
	// given
	ctx, repo, db := setupTestRepository(t)
	acme, err := repo.Create(ctx, Client{Name: "Acme"})
	require.NoError(t, err)
	projectId := test_utils.InsertProject(t, ctx, db, "Website", "100")
	assignClient(t, ctx, db, projectId, acme.Id)

	// when
	acme.Name = "Acme Corp"
	acme.ContactName = "Road Runner"
	updated, err := repo.Update(ctx, acme)

	// then
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "Road Runner", updated.ContactName)
	assert.Equal(t, 1, updated.ProjectCount)

	// when
	err = repo.Delete(ctx, acme.Id)

	// then
	require.NoError(t, err)
	_, err = repo.Get(ctx, acme.Id)
	assert.ErrorIs(t, err, ErrClientNotFound)
	var clientId *int
	require.NoError(t, db.QueryRow(ctx, `SELECT client_id FROM project WHERE id = $1`, projectId).Scan(&clientId))
	assert.Nil(t, clientId)
	assert.ErrorIs(t, repo.Delete(ctx, acme.Id), ErrClientNotFound)
	_, err = repo.Update(ctx, Client{Id: acme.Id, Name: "Gone"})
	assert.ErrorIs(t, err, ErrClientNotFound)
}
