package checkin

import (
	"sync"
)

// UnknownID is the student id recorded for scans that failed before an id
// could be trusted.
const UnknownID = "UNKNOWN"

// Entry is one line of the session ledger.
type Entry struct {
	ID          uint64 `json:"id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Time        string `json:"time"`
	Class       Class  `json:"status"`
	Kind        Kind   `json:"outcome"`
}

// Counts are derived tallies over the ledger.
type Counts struct {
	Success   int `json:"success"`
	Duplicate int `json:"duplicate"`
	Error     int `json:"error"`
	Total     int `json:"total"`
}

// Ledger is an in-memory, append-only log of outcomes for the current
// session. It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append stores e with the next monotonic id and returns the stored entry.
func (l *Ledger) Append(e Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	e.ID = l.nextID
	l.entries = append(l.entries, e)
	return e
}

// All returns a copy of the entries, most recent first.
func (l *Ledger) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Counts tallies entries per class. Successes recorded against UnknownID are
// not counted as successes.
func (l *Ledger) Counts() Counts {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var c Counts
	for _, e := range l.entries {
		switch e.Class {
		case ClassSuccess:
			if e.StudentID != UnknownID {
				c.Success++
			}
		case ClassDuplicate:
			c.Duplicate++
		case ClassError:
			c.Error++
		}
	}
	c.Total = len(l.entries)
	return c
}

// Reset ends the session. Ids keep increasing across resets.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
