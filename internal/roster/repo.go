package roster

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Repository persists students in SQL.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the student with the given id or ErrNotFound.
func (r *Repository) Find(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, status, class_id, created_at, updated_at
		FROM students WHERE id = $1
	`, id)
	var st Student
	if err := row.Scan(&st.ID, &st.Name, &st.Status, &st.ClassID, &st.CreatedAt, &st.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, errors.Wrapf(err, "find student %s", id)
	}
	return st, nil
}

// List returns every student, newest first.
func (r *Repository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, status, class_id, created_at, updated_at
		FROM students
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list students")
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Status, &st.ClassID, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan student")
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// Upsert creates or updates a student.
func (r *Repository) Upsert(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" || st.Name == "" {
		return Student{}, errors.New("student id and name required")
	}
	if st.Status == "" {
		st.Status = StatusActive
	}
	if !st.Status.Valid() {
		return Student{}, errors.Errorf("invalid status %q", st.Status)
	}
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, name, status, class_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			class_id = EXCLUDED.class_id,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, st.ID, st.Name, string(st.Status), st.ClassID, now, now)
	if err := row.Scan(&st.CreatedAt, &st.UpdatedAt); err != nil {
		return Student{}, errors.Wrapf(err, "upsert student %s", st.ID)
	}
	return st, nil
}
