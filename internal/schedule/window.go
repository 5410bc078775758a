package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidWindow is returned for malformed or inverted operating windows.
var ErrInvalidWindow = errors.New("invalid schedule window")

// Default operating hours used when nothing is configured.
const (
	DefaultStart = "08:00"
	DefaultEnd   = "14:00"
)

// TimeOfDay is a wall-clock time without a date, in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a 24h "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidWindow, "time of day %q", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// Of returns the time of day of t in t's location.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(d)/60, int(d)%60)
}

// Window is the institution's daily operating window.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseWindow builds a window from two "HH:MM" strings. Start must not be
// after end.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}
	if s > e {
		return Window{}, errors.Wrapf(ErrInvalidWindow, "start %s after end %s", start, end)
	}
	return Window{Start: s, End: e}, nil
}

// DefaultWindow is 08:00-14:00.
func DefaultWindow() Window {
	w, _ := ParseWindow(DefaultStart, DefaultEnd)
	return w
}

// Contains reports whether t falls within the window. Both bounds are
// inclusive at minute precision, so any instant during the end minute counts.
func (w Window) Contains(t time.Time) bool {
	d := Of(t)
	return d >= w.Start && d <= w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Policy supplies the window in force right now.
type Policy interface {
	CurrentWindow(ctx context.Context) (Window, error)
}

// Static is a fixed window, usually from configuration.
type Static Window

// CurrentWindow implements Policy.
func (s Static) CurrentWindow(context.Context) (Window, error) {
	return Window(s), nil
}
