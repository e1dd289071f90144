package postgres

import (
	"context"
	"errors"
	"excaliapp/core"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func scanDrawing(row pgx.Row) (*core.Drawing, error) {
	var (
		d         core.Drawing
		thumbnail *string
	)
	if err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Data, &thumbnail, &d.IsPublic, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if thumbnail != nil {
		d.Thumbnail = *thumbnail
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return &d, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) List(ctx context.Context, userID string) ([]*core.Drawing, error) {
	rows, err := r.db.Query(ctx, SelectDrawingsByUser, userID)
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
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return drawings, nil
}

func (r *Repository) get(ctx context.Context, id, query string, args ...any) (*core.Drawing, error) {
	d, err := scanDrawing(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) Get(ctx context.Context, userID, id string) (*core.Drawing, error) {
	return r.get(ctx, id, SelectDrawingByUser, id, userID)
}

func (r *Repository) Lookup(ctx context.Context, id string) (*core.Drawing, error) {
	return r.get(ctx, id, SelectDrawing, id)
}

func (r *Repository) Create(ctx context.Context, d *core.Drawing) error {
	_, err := r.db.Exec(ctx, InsertDrawing,
		d.ID, d.UserID, d.Name, d.Data, nullable(d.Thumbnail), d.IsPublic, d.CreatedAt, d.UpdatedAt)
	return err
}

func (r *Repository) Update(ctx context.Context, d *core.Drawing) error {
	tag, err := r.db.Exec(ctx, UpdateDrawing,
		d.Name, d.Data, nullable(d.Thumbnail), d.IsPublic, d.UpdatedAt, d.ID, d.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("drawing %s: %w", d.ID, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, DeleteDrawing, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	return nil
}
