package test_utils

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// InsertUser stores a user row directly and returns its id. A nil rate leaves hourly_rate NULL.
func InsertUser(t *testing.T, ctx context.Context, db *pgxpool.Pool, email string, rate *decimal.Decimal) int {
	t.Helper()
	hourlyRate := decimal.NullDecimal{}
	if rate != nil {
		hourlyRate = decimal.NewNullDecimal(*rate)
	}
	var id int
	err := db.QueryRow(ctx,
		`INSERT INTO users (uid, name, email, hourly_rate) VALUES ($1, $2, $3, $4) RETURNING id`,
		uuid.NewString(), email, email, hourlyRate,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func InsertClient(t *testing.T, ctx context.Context, db *pgxpool.Pool, name string) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx, `INSERT INTO client (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertProject stores an active project billed at hourlyRate with a 20% margin.
func InsertProject(t *testing.T, ctx context.Context, db *pgxpool.Pool, name string, hourlyRate string) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx,
		`INSERT INTO project (name, status, start_date, hourly_rate, profit_margin) VALUES ($1, 'Active', $2, $3, 20) RETURNING id`,
		name, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), decimal.RequireFromString(hourlyRate),
	).Scan(&id)
	require.NoError(t, err)
	return id
}
