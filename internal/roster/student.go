package roster

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a student id is not on the roster.
var ErrNotFound = errors.New("student not found")

// Status is a student's disciplinary status.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpelled  Status = "expelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusExpelled:
		return true
	}
	return false
}

// Student is a roster entry.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	ClassID   string    `json:"class_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the student may accrue attendance. A missing status
// counts as active.
func (s Student) Active() bool {
	return s.Status == "" || s.Status == StatusActive
}

// Lookup finds students by id.
type Lookup interface {
	Find(ctx context.Context, id string) (Student, error)
}
