package deliverable

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/database"
	"github.com/marginly/marginly/pkg/project"
	log "github.com/sirupsen/logrus"
)

var ErrDeliverableNotFound = errors.New("deliverable not found")

type Repository interface {
	Create(ctx context.Context, deliverable Deliverable) (Deliverable, error)
	Get(ctx context.Context, projectId int, id int) (Deliverable, error)
	ListByProject(ctx context.Context, projectId int) ([]Deliverable, error)
	// ListOpenDueBetween returns deliverables that are not completed and due within [from, to], soonest first.
	ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]Deliverable, error)
	Update(ctx context.Context, deliverable Deliverable) (Deliverable, error)
	Delete(ctx context.Context, projectId int, id int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectDeliverable = `SELECT d.id, d.project_id, p.name, d.name, d.due_date, d.hours, d.status
FROM deliverable d
JOIN project p ON p.id = d.project_id`

func scanDeliverable(row pgx.Row) (Deliverable, error) {
	var d Deliverable
	err := row.Scan(&d.Id, &d.ProjectId, &d.ProjectName, &d.Name, &d.DueDate, &d.Hours, &d.Status)
	return d, err
}

func (r *RepositoryImpl) Create(ctx context.Context, deliverable Deliverable) (Deliverable, error) {
	query := `INSERT INTO deliverable (project_id, name, due_date, hours, status) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, deliverable.ProjectId, deliverable.Name, deliverable.DueDate, deliverable.Hours,
		deliverable.Status).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err, "deliverable_project_id_fkey") {
			return Deliverable{}, project.ErrProjectNotFound
		}
		err := fmt.Errorf("could not create deliverable: %w", err)
		log.Error(err)
		return Deliverable{}, err
	}
	return r.Get(ctx, deliverable.ProjectId, id)
}

func (r *RepositoryImpl) Get(ctx context.Context, projectId int, id int) (Deliverable, error) {
	d, err := scanDeliverable(r.db.QueryRow(ctx, selectDeliverable+` WHERE d.project_id = $1 AND d.id = $2`, projectId, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deliverable{}, ErrDeliverableNotFound
		}
		err := fmt.Errorf("could not get deliverable: %w", err)
		log.Error(err)
		return Deliverable{}, err
	}
	return d, nil
}

func (r *RepositoryImpl) ListByProject(ctx context.Context, projectId int) ([]Deliverable, error) {
	return r.list(ctx, selectDeliverable+` WHERE d.project_id = $1 ORDER BY d.due_date, d.id`, projectId)
}

func (r *RepositoryImpl) ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]Deliverable, error) {
	query := selectDeliverable + ` WHERE d.status <> $1 AND d.due_date BETWEEN $2 AND $3 ORDER BY d.due_date, d.id`
	return r.list(ctx, query, StatusCompleted, from, to)
}

func (r *RepositoryImpl) list(ctx context.Context, query string, args ...any) ([]Deliverable, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query deliverables: %w", err)
		log.Error(err)
		return nil, err
	}
	deliverables, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Deliverable, error) {
		return scanDeliverable(row)
	})
	if err != nil {
		err := fmt.Errorf("could not scan deliverables: %w", err)
		log.Error(err)
		return nil, err
	}
	return deliverables, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, deliverable Deliverable) (Deliverable, error) {
	query := `UPDATE deliverable SET name = $1, due_date = $2, hours = $3, status = $4 WHERE project_id = $5 AND id = $6`
	result, err := r.db.Exec(ctx, query, deliverable.Name, deliverable.DueDate, deliverable.Hours, deliverable.Status,
		deliverable.ProjectId, deliverable.Id)
	if err != nil {
		err := fmt.Errorf("could not update deliverable: %w", err)
		log.Error(err)
		return Deliverable{}, err
	}
	if result.RowsAffected() == 0 {
		return Deliverable{}, ErrDeliverableNotFound
	}
	return r.Get(ctx, deliverable.ProjectId, deliverable.Id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, projectId int, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM deliverable WHERE project_id = $1 AND id = $2`, projectId, id)
	if err != nil {
		err := fmt.Errorf("could not delete deliverable: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrDeliverableNotFound
	}
	return nil
}
