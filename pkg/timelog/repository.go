package timelog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/database"
	"github.com/marginly/marginly/pkg/project"
	"github.com/marginly/marginly/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrTimeLogNotFound = errors.New("time log not found")

type Repository interface {
	Create(ctx context.Context, timeLog TimeLog) (TimeLog, error)
	Get(ctx context.Context, id int) (TimeLog, error)
	List(ctx context.Context, filter Filter) ([]TimeLog, error)
	Update(ctx context.Context, timeLog TimeLog) (TimeLog, error)
	Delete(ctx context.Context, id int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectTimeLog = `SELECT tl.id, tl.project_id, tl.user_id, u.name, u.hourly_rate, tl.task_id, tl.date, tl.hours,
       tl.billable, tl.description, tl.start_time, tl.end_time
FROM time_log tl
JOIN users u ON u.id = tl.user_id`

func scanTimeLog(row pgx.Row) (TimeLog, error) {
	var l TimeLog
	err := row.Scan(&l.Id, &l.ProjectId, &l.UserId, &l.UserName, &l.UserRate, &l.TaskId, &l.Date, &l.Hours,
		&l.Billable, &l.Description, &l.StartTime, &l.EndTime)
	return l, err
}

func translateWriteError(err error) error {
	switch {
	case database.IsForeignKeyViolation(err, "time_log_project_id_fkey"):
		return project.ErrProjectNotFound
	case database.IsForeignKeyViolation(err, "time_log_user_id_fkey"):
		return user.ErrUserNotFound
	}
	return nil
}

func (r *RepositoryImpl) Create(ctx context.Context, timeLog TimeLog) (TimeLog, error) {
	query := `INSERT INTO time_log (project_id, user_id, task_id, date, hours, billable, description, start_time, end_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, timeLog.ProjectId, timeLog.UserId, timeLog.TaskId, timeLog.Date, timeLog.Hours,
		timeLog.Billable, timeLog.Description, timeLog.StartTime, timeLog.EndTime).Scan(&id)
	if err != nil {
		if translated := translateWriteError(err); translated != nil {
			return TimeLog{}, translated
		}
		err := fmt.Errorf("could not create time log: %w", err)
		log.Error(err)
		return TimeLog{}, err
	}
	return r.Get(ctx, id)
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (TimeLog, error) {
	l, err := scanTimeLog(r.db.QueryRow(ctx, selectTimeLog+` WHERE tl.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TimeLog{}, ErrTimeLogNotFound
		}
		err := fmt.Errorf("could not get time log: %w", err)
		log.Error(err)
		return TimeLog{}, err
	}
	return l, nil
}

func (r *RepositoryImpl) List(ctx context.Context, filter Filter) ([]TimeLog, error) {
	var conditions []string
	var args []any
	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.ProjectId != 0 {
		add("tl.project_id = $%d", filter.ProjectId)
	}
	if filter.UserId != 0 {
		add("tl.user_id = $%d", filter.UserId)
	}
	if !filter.From.IsZero() {
		add("tl.date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("tl.date <= $%d", filter.To)
	}
	if filter.Billable != nil {
		add("tl.billable = $%d", *filter.Billable)
	}

	query := selectTimeLog
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY tl.date DESC, tl.id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query time logs: %w", err)
		log.Error(err)
		return nil, err
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TimeLog, error) {
		return scanTimeLog(row)
	})
	if err != nil {
		err := fmt.Errorf("could not scan time logs: %w", err)
		log.Error(err)
		return nil, err
	}
	return logs, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, timeLog TimeLog) (TimeLog, error) {
	query := `UPDATE time_log
SET project_id = $1, user_id = $2, task_id = $3, date = $4, hours = $5, billable = $6, description = $7,
    start_time = $8, end_time = $9
WHERE id = $10`
	result, err := r.db.Exec(ctx, query, timeLog.ProjectId, timeLog.UserId, timeLog.TaskId, timeLog.Date, timeLog.Hours,
		timeLog.Billable, timeLog.Description, timeLog.StartTime, timeLog.EndTime, timeLog.Id)
	if err != nil {
		if translated := translateWriteError(err); translated != nil {
			return TimeLog{}, translated
		}
		err := fmt.Errorf("could not update time log: %w", err)
		log.Error(err)
		return TimeLog{}, err
	}
	if result.RowsAffected() == 0 {
		return TimeLog{}, ErrTimeLogNotFound
	}
	return r.Get(ctx, timeLog.Id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM time_log WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete time log: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTimeLogNotFound
	}
	return nil
}
