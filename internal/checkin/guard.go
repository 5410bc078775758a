package checkin

import (
	"sync"
	"time"
)

// GuardState is the debounce guard's state.
type GuardState int

const (
	Idle GuardState = iota
	Processing
	CoolingDown
)

func (s GuardState) String() string {
	switch s {
	case Processing:
		return "processing"
	case CoolingDown:
		return "cooling_down"
	default:
		return "idle"
	}
}

// Guard is a single-flight debounce: Idle -> Processing -> CoolingDown -> Idle.
// Events that arrive while not Idle are dropped, never queued. The cool-down
// expires lazily on the next TryAcquire, so no timer goroutine is needed.
type Guard struct {
	mu       sync.Mutex
	state    GuardState
	until    time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewGuard builds a guard. now may be nil for the wall clock.
func NewGuard(cooldown time.Duration, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	if cooldown < 0 {
		cooldown = 0
	}
	return &Guard{cooldown: cooldown, now: now}
}

// TryAcquire moves Idle to Processing and reports whether it did.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	if g.state != Idle {
		return false
	}
	g.state = Processing
	return true
}

// Release ends processing and starts the cool-down.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Processing {
		return
	}
	if g.cooldown == 0 {
		g.state = Idle
		return
	}
	g.state = CoolingDown
	g.until = g.now().Add(g.cooldown)
}

// State reports the current state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	return g.state
}

func (g *Guard) expire() {
	if g.state == CoolingDown && !g.now().Before(g.until) {
		g.state = Idle
	}
}
