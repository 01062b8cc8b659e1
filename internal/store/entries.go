package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/christopherklint97/timecard/internal/model"
)

const entryColumns = `id, start, stop, week_day, code, memo`

func (db *DB) CreateEntry(ctx context.Context, e *model.Entry) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO entries (start, stop, week_day, code, memo) VALUES (?, ?, ?, ?, ?)`,
		e.Start, e.Stop, e.WeekDay, e.Code, e.Memo,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading entry id: %w", err)
	}
	e.ID = &id
	return id, nil
}

func (db *DB) Entry(ctx context.Context, id int64) (*model.Entry, error) {
	entries, err := db.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return &entries[0], nil
}

func (db *DB) LastEntry(ctx context.Context) (*model.Entry, error) {
	entries, err := db.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("last entry: %w", ErrNotFound)
	}
	return &entries[0], nil
}

// EntriesBetween returns entries with start in [start, end), oldest first.
func (db *DB) EntriesBetween(ctx context.Context, start, end string) ([]model.Entry, error) {
	return db.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE start >= ? AND start < ?
		 ORDER BY start ASC, id ASC`,
		start, end,
	)
}

func (db *DB) UpdateEntry(ctx context.Context, e model.Entry) error {
	if e.ID == nil {
		return errors.New("updating entry: id is required")
	}
	res, err := db.ExecContext(ctx,
		`UPDATE entries SET start = ?, stop = ?, week_day = ?, code = ?, memo = ? WHERE id = ?`,
		e.Start, e.Stop, e.WeekDay, e.Code, e.Memo, *e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("entry %d", *e.ID))
}

func (db *DB) DeleteEntry(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("entry %d", id))
}

func (db *DB) DeleteLastEntry(ctx context.Context) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = (SELECT MAX(id) FROM entries)`)
	if err != nil {
		return fmt.Errorf("deleting last entry: %w", err)
	}
	return requireAffected(res, "last entry")
}

func (db *DB) queryEntries(ctx context.Context, query string, args ...interface{}) ([]model.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var e model.Entry
		var id int64
		var memo sql.NullString

		if err := rows.Scan(&id, &e.Start, &e.Stop, &e.WeekDay, &e.Code, &memo); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.ID = &id
		e.Memo = memo.String

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
