package stage

import (
	"context"
	"database/sql"
)

// Repository persists the single stage-state row. The row is created
// lazily on first access; the id = 1 check constraint keeps it singular
// without any in-process locking.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Current returns the current presenter's record id, or "" when the
// screen is idle.
func (r *Repository) Current(ctx context.Context) (string, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO stage_state (id) VALUES (1)
		ON CONFLICT (id) DO NOTHING
	`); err != nil {
		return "", err
	}
	var id sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT current_graduate_id FROM stage_state WHERE id = 1`).Scan(&id)
	if err != nil {
		return "", err
	}
	return id.String, nil
}

// SetCurrent points the screen at a record, or clears it with "".
func (r *Repository) SetCurrent(ctx context.Context, id string) error {
	var val any
	if id != "" {
		val = id
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stage_state (id, current_graduate_id, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET current_graduate_id = $1, updated_at = NOW()
	`, val)
	return err
}
