package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"schoolattend/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()
	db, err := store.NewDB(ctx, "sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("store.NewDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	now := time.Now().UTC()
	for _, id := range []string{"S1", "S2"} {
		if _, err := db.Client.ExecContext(ctx, `
			INSERT INTO students (id, name, status, class_id, created_at, updated_at)
			VALUES ($1, $2, 'active', '', $3, $4)
		`, id, "student "+id, now, now); err != nil {
			t.Fatalf("seed student: %v", err)
		}
	}
	return NewRepository(db.Client)
}

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.Upsert(ctx, "S1", "2026-10-17", true, "QR Scan")
	if err != nil {
		t.Fatalf("Upsert(): %v", err)
	}
	second, err := repo.Upsert(ctx, "S1", "2026-10-17", true, "Manual")
	if err != nil {
		t.Fatalf("Upsert() again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second upsert created a new row: %s != %s", first.ID, second.ID)
	}
	if second.Notes != "Manual" {
		t.Errorf("Notes = %q; want Manual", second.Notes)
	}

	records, err := repo.ListByStudent(ctx, "S1")
	if err != nil {
		t.Fatalf("ListByStudent(): %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d; want 1", len(records))
	}
}

func TestUpsertConcurrentCallersConverge(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Upsert(ctx, "S2", "2026-10-17", true, "QR Scan"); err != nil {
				t.Errorf("Upsert(): %v", err)
			}
		}()
	}
	wg.Wait()

	records, _ := repo.ListByStudent(ctx, "S2")
	if len(records) != 1 {
		t.Errorf("records = %d; want exactly 1", len(records))
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ok, err := repo.Exists(ctx, "S1", "2026-10-17")
	if err != nil || ok {
		t.Fatalf("Exists() before write = %v, %v; want false, nil", ok, err)
	}
	if _, err := repo.Upsert(ctx, "S1", "2026-10-17", true, ""); err != nil {
		t.Fatalf("Upsert(): %v", err)
	}
	if ok, _ = repo.Exists(ctx, "S1", "2026-10-17"); !ok {
		t.Error("Exists() after write = false; want true")
	}
	if ok, _ = repo.Exists(ctx, "S1", "2026-10-18"); ok {
		t.Error("Exists() on another day = true; want false")
	}
}

func TestUpsertValidation(t *testing.T) {
	repo := newTestRepo(t)
	tests := []struct {
		name, student, date string
	}{
		{name: "no student", date: "2026-10-17"},
		{name: "no date", student: "S1"},
		{name: "bad date", student: "S1", date: "17/10/2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Upsert(context.Background(), tt.student, tt.date, true, ""); err == nil {
				t.Error("Upsert(): want error")
			}
		})
	}
}

func TestUpdateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec, err := repo.Upsert(ctx, "S1", "2026-10-16", true, "QR Scan")
	if err != nil {
		t.Fatalf("Upsert(): %v", err)
	}
	updated, err := repo.Update(ctx, rec.ID, false, "left early")
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if updated.Present || updated.Notes != "left early" {
		t.Errorf("Update() = %+v", updated)
	}
	got, err := repo.Get(ctx, rec.ID)
	if err != nil || got.Present {
		t.Errorf("Get() = %+v, %v", got, err)
	}
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete(): %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Delete() twice err = %v; want ErrRecordNotFound", err)
	}
	if _, err := repo.Get(ctx, rec.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get() deleted err = %v; want ErrRecordNotFound", err)
	}
	if _, err := repo.Update(ctx, "missing", true, ""); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Update(missing) err = %v; want ErrRecordNotFound", err)
	}
}

func TestListAllOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, d := range []string{"2026-10-15", "2026-10-17", "2026-10-16"} {
		if _, err := repo.Upsert(ctx, "S1", d, true, ""); err != nil {
			t.Fatalf("Upsert(%s): %v", d, err)
		}
	}
	records, err := repo.ListAll(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListAll(): %v", err)
	}
	if len(records) != 2 || records[0].Date != "2026-10-17" || records[1].Date != "2026-10-16" {
		t.Errorf("ListAll() = %+v", records)
	}
}
