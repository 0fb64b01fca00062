package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/database"
	"github.com/marginly/marginly/pkg/project"
	log "github.com/sirupsen/logrus"
)

var ErrExpenseNotFound = errors.New("expense not found")

type Repository interface {
	Create(ctx context.Context, expense Expense) (Expense, error)
	Get(ctx context.Context, projectId int, id int) (Expense, error)
	ListByProject(ctx context.Context, projectId int) ([]Expense, error)
	Delete(ctx context.Context, projectId int, id int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, expense Expense) (Expense, error) {
	query := `INSERT INTO project_expense (project_id, amount, type, description, date)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := r.db.QueryRow(ctx, query, expense.ProjectId, expense.Amount, expense.Type, expense.Description, expense.Date).
		Scan(&expense.Id)
	if err != nil {
		if database.IsForeignKeyViolation(err, "project_expense_project_id_fkey") {
			return Expense{}, project.ErrProjectNotFound
		}
		err := fmt.Errorf("could not create expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	return expense, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, projectId int, id int) (Expense, error) {
	query := `SELECT id, project_id, amount, type, description, date FROM project_expense WHERE project_id = $1 AND id = $2`
	var e Expense
	err := r.db.QueryRow(ctx, query, projectId, id).Scan(&e.Id, &e.ProjectId, &e.Amount, &e.Type, &e.Description, &e.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrExpenseNotFound
		}
		err := fmt.Errorf("could not get expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	return e, nil
}

func (r *RepositoryImpl) ListByProject(ctx context.Context, projectId int) ([]Expense, error) {
	query := `SELECT id, project_id, amount, type, description, date
FROM project_expense
WHERE project_id = $1
ORDER BY date DESC, id DESC`
	rows, err := r.db.Query(ctx, query, projectId)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Expense, error) {
		var e Expense
		err := row.Scan(&e.Id, &e.ProjectId, &e.Amount, &e.Type, &e.Description, &e.Date)
		return e, err
	})
	if err != nil {
		err := fmt.Errorf("could not scan expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, projectId int, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM project_expense WHERE project_id = $1 AND id = $2`, projectId, id)
	if err != nil {
		err := fmt.Errorf("could not delete expense: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
