package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/christopherklint97/timecard/internal/model"
)

func (db *DB) CreateProject(ctx context.Context, p *model.Project) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO projects (name, code) VALUES (?, ?)`, p.Name, p.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("project %q: %w", p.Code, ErrDuplicateCode)
		}
		return 0, fmt.Errorf("inserting project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading project id: %w", err)
	}
	p.ID = &id
	return id, nil
}

func (db *DB) Project(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	var pid int64
	err := db.QueryRowContext(ctx,
		`SELECT id, name, code FROM projects WHERE id = ?`, id,
	).Scan(&pid, &p.Name, &p.Code)
	if noRows(err) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}
	p.ID = &pid
	return &p, nil
}

func (db *DB) Projects(ctx context.Context) ([]model.Project, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, code FROM projects ORDER BY code ASC`)
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

func (db *DB) UpdateProject(ctx context.Context, p model.Project) error {
	if p.ID == nil {
		return errors.New("updating project: id is required")
	}
	res, err := db.ExecContext(ctx,
		`UPDATE projects SET name = ?, code = ? WHERE id = ?`, p.Name, p.Code, *p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %q: %w", p.Code, ErrDuplicateCode)
		}
		return fmt.Errorf("updating project: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("project %d", *p.ID))
}

func (db *DB) DeleteProject(ctx context.Context, code string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM projects WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("project %q", code))
}
