package checkin

import (
	"encoding/json"
	"strings"
	"testing"

	"schoolattend/internal/roster"
	"schoolattend/internal/schedule"
)

func TestFeedbackFor(t *testing.T) {
	w := schedule.DefaultWindow()
	tests := []struct {
		name      string
		outcome   Outcome
		level     Level
		tone      *Tone
		titleHas  string
		detailHas string
	}{
		{name: "success", outcome: Outcome{Kind: Success, StudentName: "Amal"}, level: LevelSuccess, tone: &SuccessTone, detailHas: "Amal"},
		{name: "duplicate", outcome: Outcome{Kind: AlreadyPresent, StudentName: "Amal"}, level: LevelWarning, tone: &WarningTone, detailHas: "already"},
		{name: "out of window", outcome: Outcome{Kind: OutOfWindow}, level: LevelError, tone: &WarningTone, detailHas: "08:00 to 14:00"},
		{name: "suspended", outcome: Outcome{Kind: InactiveStudent, Status: roster.StatusSuspended, StudentName: "Badr"}, level: LevelError, tone: &WarningTone, titleHas: "suspended"},
		{name: "unknown", outcome: Outcome{Kind: UnknownStudent, RawID: "X1"}, level: LevelError, detailHas: "X1"},
		{name: "error", outcome: Outcome{Kind: ProcessingError}, level: LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FeedbackFor(tt.outcome, w)
			if f.Level != tt.level {
				t.Errorf("Level = %s; want %s", f.Level, tt.level)
			}
			switch {
			case tt.tone == nil && f.Tone != nil:
				t.Errorf("Tone = %+v; want silence", *f.Tone)
			case tt.tone != nil && (f.Tone == nil || *f.Tone != *tt.tone):
				t.Errorf("Tone = %v; want %+v", f.Tone, *tt.tone)
			}
			if !strings.Contains(f.Title, tt.titleHas) {
				t.Errorf("Title = %q; want it to contain %q", f.Title, tt.titleHas)
			}
			if !strings.Contains(f.Description, tt.detailHas) {
				t.Errorf("Description = %q; want it to contain %q", f.Description, tt.detailHas)
			}
		})
	}
}

func TestKindClassAndText(t *testing.T) {
	tests := []struct {
		kind  Kind
		class Class
		text  string
	}{
		{Success, ClassSuccess, "success"},
		{AlreadyPresent, ClassDuplicate, "already_present"},
		{OutOfWindow, ClassError, "out_of_window"},
		{InactiveStudent, ClassError, "inactive_student"},
		{UnknownStudent, ClassError, "unknown_student"},
		{ProcessingError, ClassError, "processing_error"},
	}
	for _, tt := range tests {
		if got := tt.kind.Class(); got != tt.class {
			t.Errorf("%v.Class() = %s; want %s", tt.kind, got, tt.class)
		}
		if b, _ := tt.kind.MarshalText(); string(b) != tt.text {
			t.Errorf("MarshalText() = %s; want %s", b, tt.text)
		}
	}
}

func TestEntryJSONRoundTrip(t *testing.T) {
	for k := Success; k <= ProcessingError; k++ {
		in := Entry{ID: 7, StudentID: "S1", StudentName: "Amal", Time: "09:15:00", Class: k.Class(), Kind: k}
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", k, err)
		}
		var out Entry
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("Unmarshal(%s): %v", b, err)
		}
		if out != in {
			t.Errorf("round trip = %+v; want %+v", out, in)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("teleported")); err == nil {
		t.Error("UnmarshalText(unknown name): want error")
	}
}

func TestLedgerResetKeepsIDsMonotonic(t *testing.T) {
	l := NewLedger()
	first := l.Append(Entry{StudentID: "S1", Class: ClassSuccess})
	l.Reset()
	if l.Len() != 0 || len(l.All()) != 0 {
		t.Fatalf("ledger not empty after Reset()")
	}
	second := l.Append(Entry{StudentID: "S1", Class: ClassSuccess})
	if second.ID <= first.ID {
		t.Errorf("id after reset = %d; want > %d", second.ID, first.ID)
	}
	if c := l.Counts(); c.Success != 1 || c.Total != 1 {
		t.Errorf("Counts() = %+v", c)
	}
	l.Append(Entry{StudentID: UnknownID, Class: ClassSuccess})
	if c := l.Counts(); c.Success != 1 || c.Total != 2 {
		t.Errorf("Counts() with UNKNOWN success = %+v; want success 1 total 2", c)
	}
}
