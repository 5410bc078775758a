package checkin

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"schoolattend/internal/roster"
	"schoolattend/internal/schedule"
)

// Level is the toast style of a feedback message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Tone describes a short synthesized beep. A zero Tone means silence.
type Tone struct {
	FrequencyHz int    `json:"frequency_hz"`
	Waveform    string `json:"waveform"`
	DurationMS  int    `json:"duration_ms"`
}

// IsZero reports whether the tone is silent.
func (t Tone) IsZero() bool { return t.FrequencyHz == 0 }

var (
	SuccessTone = Tone{FrequencyHz: 800, Waveform: "sine", DurationMS: 200}
	WarningTone = Tone{FrequencyHz: 400, Waveform: "sawtooth", DurationMS: 300}
)

func toneOf(t Tone) *Tone { return &t }

// Feedback is what the operator sees and hears for one outcome.
type Feedback struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tone        *Tone  `json:"tone,omitempty"`
}

// FeedbackFor renders the operator-facing message for an outcome.
func FeedbackFor(o Outcome, w schedule.Window) Feedback {
	switch o.Kind {
	case Success:
		return Feedback{Level: LevelSuccess, Title: "Attendance recorded", Description: o.StudentName, Tone: toneOf(SuccessTone)}
	case AlreadyPresent:
		return Feedback{
			Level:       LevelWarning,
			Title:       "Already checked in",
			Description: o.StudentName + " is already marked present today",
			Tone:        toneOf(WarningTone),
		}
	case OutOfWindow:
		return Feedback{
			Level:       LevelError,
			Title:       "Outside school hours",
			Description: fmt.Sprintf("Check-in is open from %s to %s", w.Start, w.End),
			Tone:        toneOf(WarningTone),
		}
	case InactiveStudent:
		return Feedback{
			Level:       LevelError,
			Title:       "Cannot check in a " + statusLabel(o.Status) + " student",
			Description: "Student: " + o.StudentName,
			Tone:        toneOf(WarningTone),
		}
	case UnknownStudent:
		return Feedback{Level: LevelError, Title: "Student not found", Description: "Student ID: " + o.RawID}
	default:
		return Feedback{Level: LevelError, Title: "Invalid code or processing error", Description: "Please scan again"}
	}
}

func statusLabel(s roster.Status) string {
	if s == "" {
		return "inactive"
	}
	return string(s)
}

// FeedbackSink receives feedback synchronously with each outcome.
type FeedbackSink interface {
	Notify(o Outcome, f Feedback)
}

// LogSink writes every outcome to a structured logger.
type LogSink struct {
	Log logrus.FieldLogger
}

// Notify implements FeedbackSink.
func (s LogSink) Notify(o Outcome, f Feedback) {
	entry := s.Log.WithFields(logrus.Fields{
		"outcome":    o.Kind.String(),
		"student_id": o.StudentID,
		"raw_id":     o.RawID,
	})
	switch f.Level {
	case LevelSuccess:
		entry.Info(f.Title)
	case LevelWarning:
		entry.Warn(f.Title)
	default:
		entry.Warn(f.Title + ": " + f.Description)
	}
}

// WriterSink prints one line per outcome, ringing the terminal bell for
// outcomes that carry a tone.
type WriterSink struct {
	W    io.Writer
	Bell bool
}

// Notify implements FeedbackSink.
func (s WriterSink) Notify(o Outcome, f Feedback) {
	bell := ""
	if s.Bell && f.Tone != nil {
		bell = "\a"
		if *f.Tone == WarningTone {
			bell = "\a\a"
		}
	}
	fmt.Fprintf(s.W, "%s[%s] %s - %s\n", bell, f.Level, f.Title, f.Description)
}
