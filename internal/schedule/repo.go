package schedule

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const settingsRowID = 1

// Repository reads and writes the operating window from school_settings.
// A missing row yields the fallback window.
type Repository struct {
	db       *sql.DB
	fallback Window
}

// NewRepository creates a repo that falls back to the given window.
func NewRepository(db *sql.DB, fallback Window) *Repository {
	return &Repository{db: db, fallback: fallback}
}

// CurrentWindow implements Policy.
func (r *Repository) CurrentWindow(ctx context.Context) (Window, error) {
	var start, end string
	err := r.db.QueryRowContext(ctx, `
		SELECT work_start_time, work_end_time FROM school_settings WHERE id = $1
	`, settingsRowID).Scan(&start, &end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.fallback, nil
		}
		return Window{}, errors.Wrap(err, "load school settings")
	}
	return ParseWindow(start, end)
}

// Update stores a new operating window.
func (r *Repository) Update(ctx context.Context, w Window) error {
	if w.Start > w.End {
		return ErrInvalidWindow
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO school_settings (id, work_start_time, work_end_time, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			work_start_time = EXCLUDED.work_start_time,
			work_end_time = EXCLUDED.work_end_time,
			updated_at = EXCLUDED.updated_at
	`, settingsRowID, w.Start.String(), w.End.String(), time.Now().UTC())
	return errors.Wrap(err, "update school settings")
}
