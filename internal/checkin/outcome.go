package checkin

import (
	"fmt"

	"schoolattend/internal/roster"
)

// Kind classifies the result of one check-in attempt.
type Kind int

const (
	Success Kind = iota
	AlreadyPresent
	OutOfWindow
	InactiveStudent
	UnknownStudent
	ProcessingError
)

var kindNames = [...]string{
	Success:         "success",
	AlreadyPresent:  "already_present",
	OutOfWindow:     "out_of_window",
	InactiveStudent: "inactive_student",
	UnknownStudent:  "unknown_student",
	ProcessingError: "processing_error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText renders the kind as its snake_case name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a snake_case kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome kind %q", text)
}

// Class is the coarse bucket shown in the session ledger.
type Class string

const (
	ClassSuccess   Class = "success"
	ClassDuplicate Class = "duplicate"
	ClassError     Class = "error"
)

// Class maps the kind to its ledger bucket.
func (k Kind) Class() Class {
	switch k {
	case Success:
		return ClassSuccess
	case AlreadyPresent:
		return ClassDuplicate
	default:
		return ClassError
	}
}

// Outcome is the immutable result of processing one decode event.
type Outcome struct {
	Kind        Kind          `json:"kind"`
	StudentID   string        `json:"student_id,omitempty"`
	StudentName string        `json:"student_name,omitempty"`
	Status      roster.Status `json:"status,omitempty"`
	RawID       string        `json:"raw_id,omitempty"`
}

func succeeded(st roster.Student) Outcome {
	return Outcome{Kind: Success, StudentID: st.ID, StudentName: st.Name, Status: st.Status}
}

func alreadyPresent(st roster.Student) Outcome {
	return Outcome{Kind: AlreadyPresent, StudentID: st.ID, StudentName: st.Name, Status: st.Status}
}

func outOfWindow(st roster.Student) Outcome {
	return Outcome{Kind: OutOfWindow, StudentID: st.ID, StudentName: st.Name, Status: st.Status}
}

func inactive(st roster.Student) Outcome {
	return Outcome{Kind: InactiveStudent, StudentID: st.ID, StudentName: st.Name, Status: st.Status}
}

func unknown(rawID string) Outcome {
	return Outcome{Kind: UnknownStudent, RawID: rawID}
}

func failed(rawID string) Outcome {
	return Outcome{Kind: ProcessingError, RawID: rawID}
}
