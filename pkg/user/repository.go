package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/database"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already in use")

type Repository interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
	GetAllUsers(ctx context.Context) ([]User, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectUser = `SELECT id, uid, name, email, hourly_rate FROM users`

func (r *RepositoryImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, name, email, hourly_rate) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, user.Uid, user.Name, user.Email, user.HourlyRate).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		err := fmt.Errorf("could not create user: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetUser(ctx context.Context, id int) (User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *RepositoryImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return r.getOne(ctx, selectUser+` WHERE uid = $1`, uid)
}

func (r *RepositoryImpl) getOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &user.HourlyRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debugf("user %v not found", arg)
			return User{}, ErrUserNotFound
		}
		err := fmt.Errorf("could not get user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}

func (r *RepositoryImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	query := `UPDATE users SET name = $1, email = $2, hourly_rate = $3 WHERE id = $4 RETURNING uid`
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.HourlyRate, user.Id).Scan(&user.Uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		err := fmt.Errorf("could not update user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}

func (r *RepositoryImpl) DeleteUser(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete user: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *RepositoryImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, selectUser+` ORDER BY name, id`)
	if err != nil {
		err := fmt.Errorf("could not query users: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0, 10)
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &user.HourlyRate); err != nil {
			err := fmt.Errorf("could not scan user: %w", err)
			log.Error(err)
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return users, nil
}
