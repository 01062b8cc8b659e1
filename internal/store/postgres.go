package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/christopherklint97/timecard/internal/model"
)

const pgUniqueViolation = "23505"

// Postgres is the PostgreSQL-backed Repository.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	pg := &Postgres{pool: pool}
	if err := pg.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return pg, nil
}

func (pg *Postgres) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id BIGSERIAL PRIMARY KEY,
			start TEXT NOT NULL,
			stop TEXT NOT NULL,
			week_day TEXT NOT NULL,
			code TEXT NOT NULL,
			memo TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS entries_start ON entries (start)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE
		)`,
	}
	for _, m := range migrations {
		if _, err := pg.pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

func (pg *Postgres) Ping(ctx context.Context) error {
	return pg.pool.Ping(ctx)
}

func (pg *Postgres) Close() error {
	pg.pool.Close()
	return nil
}

func (pg *Postgres) CreateEntry(ctx context.Context, e *model.Entry) (int64, error) {
	var id int64
	err := pg.pool.QueryRow(ctx,
		`INSERT INTO entries (start, stop, week_day, code, memo) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		e.Start, e.Stop, e.WeekDay, e.Code, e.Memo,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting entry: %w", err)
	}
	e.ID = &id
	return id, nil
}

func (pg *Postgres) Entry(ctx context.Context, id int64) (*model.Entry, error) {
	entries, err := pg.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return &entries[0], nil
}

func (pg *Postgres) LastEntry(ctx context.Context) (*model.Entry, error) {
	entries, err := pg.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("last entry: %w", ErrNotFound)
	}
	return &entries[0], nil
}

func (pg *Postgres) EntriesBetween(ctx context.Context, start, end string) ([]model.Entry, error) {
	return pg.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE start >= $1 AND start < $2
		 ORDER BY start ASC, id ASC`,
		start, end,
	)
}

func (pg *Postgres) UpdateEntry(ctx context.Context, e model.Entry) error {
	if e.ID == nil {
		return errors.New("updating entry: id is required")
	}
	tag, err := pg.pool.Exec(ctx,
		`UPDATE entries SET start = $1, stop = $2, week_day = $3, code = $4, memo = $5 WHERE id = $6`,
		e.Start, e.Stop, e.WeekDay, e.Code, e.Memo, *e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	return pgAffected(tag, fmt.Sprintf("entry %d", *e.ID))
}

func (pg *Postgres) DeleteEntry(ctx context.Context, id int64) error {
	tag, err := pg.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return pgAffected(tag, fmt.Sprintf("entry %d", id))
}

func (pg *Postgres) DeleteLastEntry(ctx context.Context) error {
	tag, err := pg.pool.Exec(ctx,
		`DELETE FROM entries WHERE id = (SELECT MAX(id) FROM entries)`)
	if err != nil {
		return fmt.Errorf("deleting last entry: %w", err)
	}
	return pgAffected(tag, "last entry")
}

func (pg *Postgres) CreateProject(ctx context.Context, p *model.Project) (int64, error) {
	var id int64
	err := pg.pool.QueryRow(ctx,
		`INSERT INTO projects (name, code) VALUES ($1, $2) RETURNING id`, p.Name, p.Code,
	).Scan(&id)
	if err != nil {
		if isPgUnique(err) {
			return 0, fmt.Errorf("project %q: %w", p.Code, ErrDuplicateCode)
		}
		return 0, fmt.Errorf("inserting project: %w", err)
	}
	p.ID = &id
	return id, nil
}

func (pg *Postgres) Project(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	var pid int64
	err := pg.pool.QueryRow(ctx,
		`SELECT id, name, code FROM projects WHERE id = $1`, id,
	).Scan(&pid, &p.Name, &p.Code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}
	p.ID = &pid
	return &p, nil
}

func (pg *Postgres) Projects(ctx context.Context) ([]model.Project, error) {
	rows, err := pg.pool.Query(ctx, `SELECT id, name, code FROM projects ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		var id int64
		if err := rows.Scan(&id, &p.Name, &p.Code); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.ID = &id
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (pg *Postgres) UpdateProject(ctx context.Context, p model.Project) error {
	if p.ID == nil {
		return errors.New("updating project: id is required")
	}
	tag, err := pg.pool.Exec(ctx,
		`UPDATE projects SET name = $1, code = $2 WHERE id = $3`, p.Name, p.Code, *p.ID)
	if err != nil {
		if isPgUnique(err) {
			return fmt.Errorf("project %q: %w", p.Code, ErrDuplicateCode)
		}
		return fmt.Errorf("updating project: %w", err)
	}
	return pgAffected(tag, fmt.Sprintf("project %d", *p.ID))
}

func (pg *Postgres) DeleteProject(ctx context.Context, code string) error {
	tag, err := pg.pool.Exec(ctx, `DELETE FROM projects WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return pgAffected(tag, fmt.Sprintf("project %q", code))
}

func (pg *Postgres) queryEntries(ctx context.Context, query string, args ...any) ([]model.Entry, error) {
	rows, err := pg.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var e model.Entry
		var id int64
		if err := rows.Scan(&id, &e.Start, &e.Stop, &e.WeekDay, &e.Code, &e.Memo); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.ID = &id
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func pgAffected(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
