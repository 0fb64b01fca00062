package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marginly/marginly/internal/config"
	"github.com/marginly/marginly/internal/database"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg  config.Application
	db   *pgxpool.Pool
	deps *Dependencies
	srv  *http.Server
}

// NewApplication connects to the database, applies migrations and builds the HTTP server.
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	db, deps, err := Bootstrap(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	if err := SetupMiddleware(r, deps.UserService, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}
	RegisterRoutes(r, deps, db, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		WriteTimeout: cfg.Server.WriteTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{cfg: cfg, db: db, deps: deps, srv: srv}, nil
}

// Bootstrap opens the database, applies migrations and builds the services without the HTTP layer.
// The caller owns the returned pool.
func Bootstrap(ctx context.Context, cfg config.Application) (*pgxpool.Pool, *Dependencies, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, BuildDependencies(db, cfg), nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	}
}
