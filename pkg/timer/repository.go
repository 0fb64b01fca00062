package timer

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

type Repository interface {
	// Replace stores the timer of its user, overwriting a running one.
	Replace(ctx context.Context, timer Timer) (Timer, error)
	Delete(ctx context.Context, userId int) error
	// Find returns a zero Timer when the user has none running.
	Find(ctx context.Context, userId int) (Timer, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Replace(ctx context.Context, timer Timer) (Timer, error) {
	query := `INSERT INTO running_timer (user_id, project_id, task_id, description, billable, start_time)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (user_id) DO UPDATE SET
					project_id = EXCLUDED.project_id,
					task_id = EXCLUDED.task_id,
					description = EXCLUDED.description,
					billable = EXCLUDED.billable,
					start_time = EXCLUDED.start_time`

	_, err := r.db.Exec(ctx, query, timer.UserId, timer.ProjectId, timer.TaskId, timer.Description, timer.Billable, timer.StartTime)
	if err != nil {
		if database.IsForeignKeyViolation(err, "running_timer_project_id_fkey") {
			return Timer{}, project.ErrProjectNotFound
		}
		err := fmt.Errorf("could not store running timer: %w", err)
		log.Error(err)
		return Timer{}, err
	}
	return r.Find(ctx, timer.UserId)
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM running_timer WHERE user_id = $1", userId)
	if err != nil {
		err := fmt.Errorf("could not delete running timer: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Find(ctx context.Context, userId int) (Timer, error) {
	query := `
		SELECT t.user_id, t.project_id, p.name, t.task_id, t.description, t.billable, t.start_time
		FROM running_timer t
		JOIN project p ON p.id = t.project_id
		WHERE t.user_id = $1`

	var timer Timer
	err := r.db.QueryRow(ctx, query, userId).Scan(&timer.UserId, &timer.ProjectId, &timer.ProjectName, &timer.TaskId,
		&timer.Description, &timer.Billable, &timer.StartTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Timer{}, nil
		}
		err := fmt.Errorf("failed when trying to find running timer: %w", err)
		log.Error(err)
		return Timer{}, err
	}
	return timer, nil
}
