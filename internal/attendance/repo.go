package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrRecordNotFound is returned when an attendance record id does not exist.
var ErrRecordNotFound = errors.New("attendance record not found")

// Repository persists attendance records in SQL. The (student_id, date)
// unique constraint backs the one-record-per-day invariant.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

const recordColumns = `id, student_id, date, present, notes, created_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.Date, &rec.Present, &rec.Notes, &rec.CreatedAt)
	return rec, err
}

// Exists reports whether a record exists for the student on date (YYYY-MM-DD).
func (r *Repository) Exists(ctx context.Context, studentID, date string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance WHERE student_id = $1 AND date = $2
	`, studentID, date).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "check attendance")
	}
	return n > 0, nil
}

// Upsert writes the record for (studentID, date), updating present and notes
// when one already exists. Concurrent callers converge on a single row.
func (r *Repository) Upsert(ctx context.Context, studentID, date string, present bool, notes string) (Record, error) {
	if studentID == "" || date == "" {
		return Record{}, errors.New("student id and date required")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Record{}, errors.Wrapf(err, "invalid date %q", date)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, student_id, date, present, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, date) DO UPDATE SET
			present = EXCLUDED.present,
			notes = EXCLUDED.notes
		RETURNING `+recordColumns,
		uuid.NewString(), studentID, date, present, notes, r.now().UTC())
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, errors.Wrapf(err, "upsert attendance %s/%s", studentID, date)
	}
	return rec, nil
}

// Get returns one record by id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM attendance WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, errors.Wrapf(err, "get attendance %s", id)
	}
	return rec, nil
}

// Update changes present/notes of an existing record.
func (r *Repository) Update(ctx context.Context, id string, present bool, notes string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance SET present = $1, notes = $2 WHERE id = $3
		RETURNING `+recordColumns,
		present, notes, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, errors.Wrapf(err, "update attendance %s", id)
	}
	return rec, nil
}

// Delete removes a record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete attendance %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListByStudent returns a student's records, newest date first.
func (r *Repository) ListByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE student_id = $1
		ORDER BY date DESC
	`, studentID)
}

// ListRange returns a student's records with from <= date <= to.
func (r *Repository) ListRange(ctx context.Context, studentID, from, to string) ([]Record, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE student_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`, studentID, from, to)
}

// ListAll returns records across all students, newest date first.
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM attendance
		ORDER BY date DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list attendance")
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan attendance")
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
