package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrClientNotFound = errors.New("client not found")

type Repository interface {
	Create(ctx context.Context, client Client) (Client, error)
	Get(ctx context.Context, id int) (Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, client Client) (Client, error)
	Delete(ctx context.Context, id int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectClient = `SELECT c.id, c.name, c.contact_name, c.email, COUNT(p.id)
	FROM client c LEFT JOIN project p ON p.client_id = c.id`

func (r *RepositoryImpl) Create(ctx context.Context, client Client) (Client, error) {
	query := `INSERT INTO client (name, contact_name, email) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRow(ctx, query, client.Name, client.ContactName, client.Email).Scan(&client.Id)
	if err != nil {
		err := fmt.Errorf("could not create client: %w", err)
		log.Error(err)
		return Client{}, err
	}
	return client, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Client, error) {
	query := selectClient + ` WHERE c.id = $1 GROUP BY c.id`
	var client Client
	err := r.db.QueryRow(ctx, query, id).Scan(&client.Id, &client.Name, &client.ContactName, &client.Email, &client.ProjectCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrClientNotFound
		}
		err := fmt.Errorf("could not get client: %w", err)
		log.Error(err)
		return Client{}, err
	}
	return client, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, selectClient+` GROUP BY c.id ORDER BY c.name, c.id`)
	if err != nil {
		err := fmt.Errorf("could not query clients: %w", err)
		log.Error(err)
		return nil, err
	}
	clients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Client, error) {
		var client Client
		err := row.Scan(&client.Id, &client.Name, &client.ContactName, &client.Email, &client.ProjectCount)
		return client, err
	})
	if err != nil {
		err := fmt.Errorf("could not scan clients: %w", err)
		log.Error(err)
		return nil, err
	}
	return clients, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, client Client) (Client, error) {
	query := `UPDATE client SET name = $1, contact_name = $2, email = $3 WHERE id = $4`
	result, err := r.db.Exec(ctx, query, client.Name, client.ContactName, client.Email, client.Id)
	if err != nil {
		err := fmt.Errorf("could not update client: %w", err)
		log.Error(err)
		return Client{}, err
	}
	if result.RowsAffected() == 0 {
		return Client{}, ErrClientNotFound
	}
	return r.Get(ctx, client.Id)
}

// Delete removes the client. Its projects stay and lose the client reference.
func (r *RepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM client WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete client: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}
