package expense

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/test_utils"
	"github.com/marginly/marginly/pkg/project"
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

func TestRepositoryImpl_Expenses(t *testing.T) {
	// given
	ctx, repo, db := setupTestRepository(t)
	projectId := test_utils.InsertProject(t, ctx, db, "Website", "100")
	otherId := test_utils.InsertProject(t, ctx, db, "Other", "100")

	// when
	first, err := repo.Create(ctx, Expense{ProjectId: projectId, Amount: d("50"), Type: "Software", Date: date(1)})
	require.NoError(t, err)
	second, err := repo.Create(ctx, Expense{ProjectId: projectId, Amount: d("12.34"), Type: "Travel", Description: "Taxi", Date: date(4)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Expense{ProjectId: otherId, Amount: d("1"), Type: "Travel", Date: date(4)})
	require.NoError(t, err)

	// then
	expenses, err := repo.ListByProject(ctx, projectId)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, second.Id, expenses[0].Id)
	assert.Equal(t, "Taxi", expenses[0].Description)
	assert.True(t, date(4).Equal(expenses[0].Date))

	stored, err := repo.Get(ctx, projectId, first.Id)
	require.NoError(t, err)
	assert.Equal(t, "50", stored.Amount.String())

	_, err = repo.Get(ctx, otherId, first.Id)
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	require.NoError(t, repo.Delete(ctx, projectId, first.Id))
	assert.ErrorIs(t, repo.Delete(ctx, projectId, first.Id), ErrExpenseNotFound)
}

func TestRepositoryImpl_Create_UnknownProject(t *testing.T) {
	ctx, repo, _ := setupTestRepository(t)

	_, err := repo.Create(ctx, Expense{ProjectId: 404, Amount: d("1"), Type: "Travel", Date: date(1)})

	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}
