package postgres

const (
	CreateDrawingsTable = `
		CREATE TABLE IF NOT EXISTS drawings (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			data TEXT NOT NULL,
			thumbnail TEXT,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS drawings_user_id ON drawings (user_id);
	`
	SelectDrawingsByUser = `
		SELECT id, user_id, name, data, thumbnail, is_public, created_at, updated_at
		FROM drawings
		WHERE user_id = $1
	`
	SelectDrawingByUser = `
		SELECT id, user_id, name, data, thumbnail, is_public, created_at, updated_at
		FROM drawings
		WHERE id = $1 AND user_id = $2
	`
	SelectDrawing = `
		SELECT id, user_id, name, data, thumbnail, is_public, created_at, updated_at
		FROM drawings
		WHERE id = $1
	`
	InsertDrawing = `
		INSERT INTO drawings (id, user_id, name, data, thumbnail, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	UpdateDrawing = `
		UPDATE drawings
		SET name = $1, data = $2, thumbnail = $3, is_public = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	DeleteDrawing = `
		DELETE FROM drawings
		WHERE id = $1 AND user_id = $2
	`
)
