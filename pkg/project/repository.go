package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/database"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrProjectNotFound = errors.New("project not found")
var ErrTeamMemberNotFound = errors.New("team member not found")
var ErrClientNotFound = errors.New("client not found")
var ErrUserNotFound = errors.New("user not found")
var ErrMemberAlreadyAssigned = errors.New("user is already a member of the project")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	CreateProject(ctx context.Context, project Project) (Project, error)
	GetProject(ctx context.Context, id int) (Project, error)
	// LockProject reads the project and holds a row lock until the surrounding transaction ends.
	LockProject(ctx context.Context, id int) (Project, error)
	ListProjects(ctx context.Context, filter Filter) ([]Project, error)
	UpdateProject(ctx context.Context, project Project) (Project, error)
	UpdateProjectBudget(ctx context.Context, id int, budget decimal.Decimal) error
	DeleteProject(ctx context.Context, id int) error
	ListTeamMembers(ctx context.Context, projectId int) ([]TeamMember, error)
	GetTeamMember(ctx context.Context, projectId int, memberId int) (TeamMember, error)
	AddTeamMember(ctx context.Context, member TeamMember) (TeamMember, error)
	UpdateTeamMember(ctx context.Context, member TeamMember) (TeamMember, error)
	RemoveTeamMember(ctx context.Context, projectId int, memberId int) error
	// ProjectIdsWithMember returns ids of projects the user is assigned to.
	ProjectIdsWithMember(ctx context.Context, userId int) ([]int, error)
	ListExpenseAmounts(ctx context.Context, projectId int) ([]decimal.Decimal, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectProject = `SELECT p.id, p.client_id, COALESCE(c.name, ''), p.name, p.description, p.status,
       p.start_date, p.end_date, p.budget, p.hourly_rate, p.estimated_hours, p.profit_margin
FROM project p
LEFT JOIN client c ON c.id = p.client_id`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.Id, &p.ClientId, &p.ClientName, &p.Name, &p.Description, &p.Status,
		&p.StartDate, &p.EndDate, &p.Budget, &p.HourlyRate, &p.EstimatedHours, &p.ProfitMargin)
	return p, err
}

func (r *RepositoryImpl) CreateProject(ctx context.Context, project Project) (Project, error) {
	query := `INSERT INTO project (client_id, name, description, status, start_date, end_date, budget, hourly_rate,
                     estimated_hours, profit_margin)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	var id int
	err := r.getQueryer().QueryRow(ctx, query, project.ClientId, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate, project.Budget, project.HourlyRate, project.EstimatedHours,
		project.ProfitMargin).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err, "project_client_id_fkey") {
			return Project{}, ErrClientNotFound
		}
		err := fmt.Errorf("could not create project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return r.GetProject(ctx, id)
}

func (r *RepositoryImpl) GetProject(ctx context.Context, id int) (Project, error) {
	return r.getProject(ctx, selectProject+` WHERE p.id = $1`, id)
}

func (r *RepositoryImpl) LockProject(ctx context.Context, id int) (Project, error) {
	if r.tx == nil {
		return Project{}, errors.New("project lock requires a transaction")
	}
	return r.getProject(ctx, selectProject+` WHERE p.id = $1 FOR UPDATE OF p`, id)
}

func (r *RepositoryImpl) getProject(ctx context.Context, query string, id int) (Project, error) {
	p, err := scanProject(r.getQueryer().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrProjectNotFound
		}
		err := fmt.Errorf("could not get project %d: %w", id, err)
		log.Error(err)
		return Project{}, err
	}
	return p, nil
}

func (r *RepositoryImpl) ListProjects(ctx context.Context, filter Filter) ([]Project, error) {
	var conditions []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.ClientId != 0 {
		args = append(args, filter.ClientId)
		conditions = append(conditions, fmt.Sprintf("p.client_id = $%d", len(args)))
	}
	query := selectProject
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.name, p.id"

	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query projects: %w", err)
		log.Error(err)
		return nil, err
	}
	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Project, error) {
		return scanProject(row)
	})
	if err != nil {
		err := fmt.Errorf("could not scan projects: %w", err)
		log.Error(err)
		return nil, err
	}
	return projects, nil
}

func (r *RepositoryImpl) UpdateProject(ctx context.Context, project Project) (Project, error) {
	query := `UPDATE project
SET client_id = $1, name = $2, description = $3, status = $4, start_date = $5, end_date = $6, hourly_rate = $7,
    estimated_hours = $8, profit_margin = $9
WHERE id = $10`
	result, err := r.getQueryer().Exec(ctx, query, project.ClientId, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate, project.HourlyRate, project.EstimatedHours, project.ProfitMargin, project.Id)
	if err != nil {
		if database.IsForeignKeyViolation(err, "project_client_id_fkey") {
			return Project{}, ErrClientNotFound
		}
		err := fmt.Errorf("could not update project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	if result.RowsAffected() == 0 {
		return Project{}, ErrProjectNotFound
	}
	return r.GetProject(ctx, project.Id)
}

func (r *RepositoryImpl) UpdateProjectBudget(ctx context.Context, id int, budget decimal.Decimal) error {
	result, err := r.getQueryer().Exec(ctx, `UPDATE project SET budget = $1 WHERE id = $2`, budget, id)
	if err != nil {
		err := fmt.Errorf("could not update budget of project %d: %w", id, err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteProject(ctx context.Context, id int) error {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM project WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete project: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

const selectTeamMember = `SELECT tm.id, tm.project_id, tm.user_id, u.name, u.hourly_rate, tm.role, tm.hours
FROM team_member tm
JOIN users u ON u.id = tm.user_id`

func scanTeamMember(row pgx.Row) (TeamMember, error) {
	var m TeamMember
	err := row.Scan(&m.Id, &m.ProjectId, &m.UserId, &m.UserName, &m.UserRate, &m.Role, &m.Hours)
	return m, err
}

func (r *RepositoryImpl) ListTeamMembers(ctx context.Context, projectId int) ([]TeamMember, error) {
	rows, err := r.getQueryer().Query(ctx, selectTeamMember+` WHERE tm.project_id = $1 ORDER BY tm.id`, projectId)
	if err != nil {
		err := fmt.Errorf("could not query team members: %w", err)
		log.Error(err)
		return nil, err
	}
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TeamMember, error) {
		return scanTeamMember(row)
	})
	if err != nil {
		err := fmt.Errorf("could not scan team members: %w", err)
		log.Error(err)
		return nil, err
	}
	return members, nil
}

func (r *RepositoryImpl) GetTeamMember(ctx context.Context, projectId int, memberId int) (TeamMember, error) {
	m, err := scanTeamMember(r.getQueryer().QueryRow(ctx,
		selectTeamMember+` WHERE tm.project_id = $1 AND tm.id = $2`, projectId, memberId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TeamMember{}, ErrTeamMemberNotFound
		}
		err := fmt.Errorf("could not get team member: %w", err)
		log.Error(err)
		return TeamMember{}, err
	}
	return m, nil
}

func (r *RepositoryImpl) AddTeamMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	query := `INSERT INTO team_member (project_id, user_id, role, hours) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := r.getQueryer().QueryRow(ctx, query, member.ProjectId, member.UserId, member.Role, member.Hours).Scan(&id)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err, "team_member_project_id_fkey"):
			return TeamMember{}, ErrProjectNotFound
		case database.IsForeignKeyViolation(err, "team_member_user_id_fkey"):
			return TeamMember{}, ErrUserNotFound
		case database.IsUniqueViolation(err):
			return TeamMember{}, ErrMemberAlreadyAssigned
		}
		err := fmt.Errorf("could not add team member: %w", err)
		log.Error(err)
		return TeamMember{}, err
	}
	return r.GetTeamMember(ctx, member.ProjectId, id)
}

func (r *RepositoryImpl) UpdateTeamMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	query := `UPDATE team_member SET role = $1, hours = $2 WHERE project_id = $3 AND id = $4`
	result, err := r.getQueryer().Exec(ctx, query, member.Role, member.Hours, member.ProjectId, member.Id)
	if err != nil {
		err := fmt.Errorf("could not update team member: %w", err)
		log.Error(err)
		return TeamMember{}, err
	}
	if result.RowsAffected() == 0 {
		return TeamMember{}, ErrTeamMemberNotFound
	}
	return r.GetTeamMember(ctx, member.ProjectId, member.Id)
}

func (r *RepositoryImpl) RemoveTeamMember(ctx context.Context, projectId int, memberId int) error {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM team_member WHERE project_id = $1 AND id = $2`, projectId, memberId)
	if err != nil {
		err := fmt.Errorf("could not remove team member: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

func (r *RepositoryImpl) ProjectIdsWithMember(ctx context.Context, userId int) ([]int, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT DISTINCT project_id FROM team_member WHERE user_id = $1 ORDER BY project_id`, userId)
	if err != nil {
		err := fmt.Errorf("could not query projects of user %d: %w", userId, err)
		log.Error(err)
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("could not scan project ids: %w", err)
	}
	return ids, nil
}

func (r *RepositoryImpl) ListExpenseAmounts(ctx context.Context, projectId int) ([]decimal.Decimal, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT amount FROM project_expense WHERE project_id = $1 ORDER BY id`, projectId)
	if err != nil {
		err := fmt.Errorf("could not query expenses of project %d: %w", projectId, err)
		log.Error(err)
		return nil, err
	}
	amounts, err := pgx.CollectRows(rows, pgx.RowTo[decimal.Decimal])
	if err != nil {
		return nil, fmt.Errorf("could not scan expense amounts: %w", err)
	}
	return amounts, nil
}
