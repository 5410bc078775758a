package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the calendar-date format stored in the date column.
const DateLayout = "2006-01-02"

// DateOf returns t's calendar date in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Record is one student's attendance for one calendar date.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"`
	Present   bool      `json:"present"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarises a student's attendance over a date range.
type Stats struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Percentage float64 `json:"percentage"`
}

// Store is what the check-in pipeline needs from attendance persistence.
type Store interface {
	Exists(ctx context.Context, studentID, date string) (bool, error)
	Upsert(ctx context.Context, studentID, date string, present bool, notes string) (Record, error)
}

// Service wraps the repository with the reporting operations used by the API.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Stats computes totals for studentID between from and to (inclusive, YYYY-MM-DD).
func (s *Service) Stats(ctx context.Context, studentID, from, to string) (Stats, error) {
	if studentID == "" {
		return Stats{}, errors.New("student id required")
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return Stats{}, errors.Wrapf(err, "invalid date %q", d)
		}
	}
	records, err := s.repo.ListRange(ctx, studentID, from, to)
	if err != nil {
		return Stats{}, err
	}
	return Summarise(records), nil
}

// Summarise counts present/absent over records.
func Summarise(records []Record) Stats {
	st := Stats{Total: len(records)}
	for _, r := range records {
		if r.Present {
			st.Present++
		}
	}
	st.Absent = st.Total - st.Present
	if st.Total > 0 {
		st.Percentage = float64(st.Present) / float64(st.Total) * 100
	}
	return st
}

// History returns a student's records, newest first.
func (s *Service) History(ctx context.Context, studentID string) ([]Record, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// List pages over all records.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// Correct lets an operator flip a record's presence or notes.
func (s *Service) Correct(ctx context.Context, id string, present bool, notes string) (Record, error) {
	return s.repo.Update(ctx, id, present, notes)
}

// Remove deletes a record.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
