package attendance

import (
	"context"
	"testing"
	"time"
)

func TestServiceStats(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewService(repo)

	marks := []struct {
		date    string
		present bool
	}{
		{"2026-10-01", true},
		{"2026-10-02", false},
		{"2026-10-03", true},
		{"2026-10-04", true},
		{"2026-11-01", true}, // outside range
	}
	for _, m := range marks {
		if _, err := repo.Upsert(ctx, "S1", m.date, m.present, ""); err != nil {
			t.Fatalf("Upsert(): %v", err)
		}
	}

	st, err := svc.Stats(ctx, "S1", "2026-10-01", "2026-10-31")
	if err != nil {
		t.Fatalf("Stats(): %v", err)
	}
	want := Stats{Total: 4, Present: 3, Absent: 1, Percentage: 75}
	if st != want {
		t.Errorf("Stats() = %+v; want %+v", st, want)
	}

	if _, err := svc.Stats(ctx, "S1", "yesterday", "2026-10-31"); err == nil {
		t.Error("Stats() with bad date: want error")
	}
}

func TestSummariseEmpty(t *testing.T) {
	if got := Summarise(nil); got != (Stats{}) {
		t.Errorf("Summarise(nil) = %+v; want zero", got)
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	// 22:30 UTC is already the next day at UTC+3
	now := time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC)
	if got := DateOf(now, riyadh); got != "2026-10-18" {
		t.Errorf("DateOf() = %s; want 2026-10-18", got)
	}
	if got := DateOf(now, time.UTC); got != "2026-10-17" {
		t.Errorf("DateOf() = %s; want 2026-10-17", got)
	}
}
