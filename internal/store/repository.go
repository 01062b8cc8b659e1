package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/christopherklint97/timecard/internal/config"
	"github.com/christopherklint97/timecard/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("project code already exists")
)

// Repository persists time entries and projects. Timestamps are stored as
// "YYYY-MM-DD HH:MM:SS" text, so lexical order is chronological order.
type Repository interface {
	CreateEntry(ctx context.Context, e *model.Entry) (int64, error)
	Entry(ctx context.Context, id int64) (*model.Entry, error)
	LastEntry(ctx context.Context) (*model.Entry, error)
	EntriesBetween(ctx context.Context, start, end string) ([]model.Entry, error)
	UpdateEntry(ctx context.Context, e model.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	DeleteLastEntry(ctx context.Context) error

	CreateProject(ctx context.Context, p *model.Project) (int64, error)
	Project(ctx context.Context, id int64) (*model.Project, error)
	Projects(ctx context.Context) ([]model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) error
	DeleteProject(ctx context.Context, code string) error

	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*DB)(nil)
	_ Repository = (*Postgres)(nil)
)

// Open returns the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Database) (Repository, error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		return OpenSQLite(cfg.Path)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
