package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.WorkStartTime != "08:00" || cfg.WorkEndTime != "14:00" {
		t.Errorf("window = %s-%s; want 08:00-14:00", cfg.WorkStartTime, cfg.WorkEndTime)
	}
	if cfg.Cooldown != 2*time.Second {
		t.Errorf("Cooldown = %v; want 2s", cfg.Cooldown)
	}
	if cfg.DatabaseDriver != "pgx" {
		t.Errorf("DatabaseDriver = %q; want pgx", cfg.DatabaseDriver)
	}
	if cfg.MetricsPort != "9091" {
		t.Errorf("MetricsPort = %q; want 9091", cfg.MetricsPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORK_START_TIME", "07:30")
	t.Setenv("COOLDOWN", "500ms")
	t.Setenv("RATE_LIMIT_PER_MIN", "nope")
	t.Setenv("TERMINAL_BELL", "0")
	t.Setenv("SCHOOL_TIMEZONE", "Asia/Riyadh")

	cfg := Load()
	if cfg.WorkStartTime != "07:30" {
		t.Errorf("WorkStartTime = %q; want 07:30", cfg.WorkStartTime)
	}
	if cfg.Cooldown != 500*time.Millisecond {
		t.Errorf("Cooldown = %v; want 500ms", cfg.Cooldown)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Errorf("RateLimitPerMin = %d; want fallback 120", cfg.RateLimitPerMin)
	}
	if cfg.TerminalBell {
		t.Error("TerminalBell = true; want false")
	}
	if loc := cfg.Location(); loc.String() != "Asia/Riyadh" {
		t.Errorf("Location() = %v; want Asia/Riyadh", loc)
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := App{SchoolTimezone: "Nowhere/Special"}
	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("Location() = %v; want UTC", loc)
	}
}
