package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"excaliapp/core"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const drawingsTableStmt = `
CREATE TABLE IF NOT EXISTS drawings (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	data TEXT NOT NULL,
	thumbnail TEXT,
	is_public INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS drawings_user_id ON drawings (user_id);`

const selectColumns = "id, user_id, name, data, thumbnail, is_public, created_at, updated_at"

type sqliteStore struct {
	db *sql.DB
}

// NewStore opens the SQLite database and creates the drawings table.
func NewStore(dataSourceName string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err = db.Exec(drawingsTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create drawings table: %w", err)
	}

	return &sqliteStore{db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDrawing(row scanner) (*core.Drawing, error) {
	var (
		d                core.Drawing
		thumbnail        sql.NullString
		created, updated int64
	)
	if err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Data, &thumbnail, &d.IsPublic, &created, &updated); err != nil {
		return nil, err
	}
	d.Thumbnail = thumbnail.String
	d.CreatedAt = time.UnixMicro(created).UTC()
	d.UpdatedAt = time.UnixMicro(updated).UTC()
	return &d, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *sqliteStore) List(ctx context.Context, userID string) ([]*core.Drawing, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM drawings WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drawings := make([]*core.Drawing, 0)
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, err
		}
		drawings = append(drawings, d)
	}
	return drawings, rows.Err()
}

func (s *sqliteStore) get(ctx context.Context, query string, args ...any) (*core.Drawing, error) {
	d, err := scanDrawing(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return d, err
}

func (s *sqliteStore) Get(ctx context.Context, userID, id string) (*core.Drawing, error) {
	d, err := s.get(ctx, "SELECT "+selectColumns+" FROM drawings WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, fmt.Errorf("drawing %s: %w", id, err)
	}
	return d, nil
}

func (s *sqliteStore) Lookup(ctx context.Context, id string) (*core.Drawing, error) {
	d, err := s.get(ctx, "SELECT "+selectColumns+" FROM drawings WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("drawing %s: %w", id, err)
	}
	return d, nil
}

func (s *sqliteStore) Create(ctx context.Context, d *core.Drawing) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO drawings ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		d.ID, d.UserID, d.Name, d.Data, nullable(d.Thumbnail), d.IsPublic, d.CreatedAt.UnixMicro(), d.UpdatedAt.UnixMicro())
	if err != nil {
		logrus.WithError(err).WithField("drawing_id", d.ID).Error("Failed to insert drawing")
		return err
	}
	return nil
}

func (s *sqliteStore) Update(ctx context.Context, d *core.Drawing) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE drawings SET name = ?, data = ?, thumbnail = ?, is_public = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		d.Name, d.Data, nullable(d.Thumbnail), d.IsPublic, d.UpdatedAt.UnixMicro(), d.ID, d.UserID)
	return affected(res, err, d.ID)
}

func (s *sqliteStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drawings WHERE id = ? AND user_id = ?", id, userID)
	return affected(res, err, id)
}

func affected(res sql.Result, err error, id string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	return nil
}
