package checkin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"schoolattend/internal/attendance"
	"schoolattend/internal/roster"
	"schoolattend/internal/schedule"
)

// Notes stored on attendance rows written by each entry path.
const (
	NoteScan   = "QR Scan"
	NoteManual = "Manual"
)

// DefaultSource names the scanner used by Process and ProcessManual.
const DefaultSource = ""

// Recorder receives pipeline metrics.
type Recorder interface {
	ObserveOutcome(outcome string, d time.Duration)
	ObserveDropped()
}

type nopRecorder struct{}

func (nopRecorder) ObserveOutcome(string, time.Duration) {}
func (nopRecorder) ObserveDropped()                      {}

// Options tune a Pipeline. Zero values get defaults.
type Options struct {
	// Location decides "today" and the wall-clock time compared against the
	// schedule window. Defaults to UTC.
	Location *time.Location
	// Timeout bounds the collaborator calls of one event. Defaults to 5s.
	Timeout time.Duration
	// Cooldown is how long new events from the same source are dropped after
	// one completes.
	Cooldown time.Duration
	Now      func() time.Time
	Log      logrus.FieldLogger
	Metrics  Recorder
	Sinks    []FeedbackSink
}

// Result bundles everything produced for one processed event.
type Result struct {
	Outcome  Outcome  `json:"outcome"`
	Feedback Feedback `json:"feedback"`
	Entry    Entry    `json:"entry"`
}

// Pipeline turns decode events into classified check-in outcomes.
type Pipeline struct {
	roster  roster.Lookup
	store   attendance.Store
	policy  schedule.Policy
	ledger  *Ledger
	sinks   []FeedbackSink
	metrics Recorder
	log     logrus.FieldLogger
	now     func() time.Time
	loc     *time.Location
	timeout time.Duration

	cooldown time.Duration
	guardMu  sync.Mutex
	guards   map[string]*Guard
}

// New wires a pipeline from its collaborators.
func New(r roster.Lookup, s attendance.Store, p schedule.Policy, ledger *Ledger, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if ledger == nil {
		ledger = NewLedger()
	}
	return &Pipeline{
		roster:  r,
		store:   s,
		policy:  p,
		ledger:   ledger,
		sinks:    opts.Sinks,
		metrics:  opts.Metrics,
		log:      opts.Log,
		now:      opts.Now,
		loc:      opts.Location,
		timeout:  opts.Timeout,
		cooldown: opts.Cooldown,
		guards:   make(map[string]*Guard),
	}
}

// Ledger exposes the session ledger.
func (p *Pipeline) Ledger() *Ledger { return p.ledger }

// Guard exposes the debounce guard of DefaultSource.
func (p *Pipeline) Guard() *Guard { return p.GuardFor(DefaultSource) }

// GuardFor returns the debounce guard of one scanner, creating it on first
// use. Each scanner cools down independently.
func (p *Pipeline) GuardFor(source string) *Guard {
	p.guardMu.Lock()
	defer p.guardMu.Unlock()
	g, ok := p.guards[source]
	if !ok {
		g = NewGuard(p.cooldown, p.now)
		p.guards[source] = g
	}
	return g
}

// Process handles one decode event. It returns false when the event was
// dropped by the debounce guard; nothing is recorded in that case.
func (p *Pipeline) Process(ctx context.Context, raw string) (Result, bool) {
	return p.ProcessFrom(ctx, DefaultSource, raw)
}

// ProcessFrom is Process for a named scanner, such as a station id.
func (p *Pipeline) ProcessFrom(ctx context.Context, source, raw string) (Result, bool) {
	return p.run(ctx, source, ParsePayload(raw), NoteScan)
}

// ProcessManual handles an operator-selected student id. The id is already
// resolved, so no payload parsing happens.
func (p *Pipeline) ProcessManual(ctx context.Context, studentID string) (Result, bool) {
	return p.ProcessManualFrom(ctx, DefaultSource, studentID)
}

// ProcessManualFrom is ProcessManual for a named operator station.
func (p *Pipeline) ProcessManualFrom(ctx context.Context, source, studentID string) (Result, bool) {
	return p.run(ctx, source, Payload{Kind: Raw, ID: studentID}, NoteManual)
}

func (p *Pipeline) run(ctx context.Context, source string, payload Payload, note string) (Result, bool) {
	guard := p.GuardFor(source)
	if !guard.TryAcquire() {
		p.metrics.ObserveDropped()
		p.log.WithFields(logrus.Fields{
			"raw_id": payload.ID,
			"source": source,
		}).Debug("scan dropped during cool-down")
		return Result{}, false
	}
	defer guard.Release()

	start := time.Now()
	outcome, window := p.classify(ctx, payload, note)
	feedback := FeedbackFor(outcome, window)
	entry := p.ledger.Append(p.entryFor(outcome))
	for _, s := range p.sinks {
		s.Notify(outcome, feedback)
	}
	elapsed := time.Since(start)
	p.metrics.ObserveOutcome(outcome.Kind.String(), elapsed)
	p.log.WithFields(logrus.Fields{
		"student_id": entry.StudentID,
		"source":     source,
		"outcome":    outcome.Kind.String(),
		"duration":   elapsed,
	}).Debug("check-in processed")
	return Result{Outcome: outcome, Feedback: feedback, Entry: entry}, true
}

type verdict struct {
	outcome Outcome
	window  schedule.Window
	err     error
}

// classify runs stages 2-6 under the timeout. A collaborator that hangs or
// panics yields ProcessingError.
func (p *Pipeline) classify(ctx context.Context, payload Payload, note string) (Outcome, schedule.Window) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan verdict, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- verdict{outcome: failed(payload.ID), err: fmt.Errorf("panic: %v", r)}
			}
		}()
		done <- p.stages(ctx, payload, note)
	}()

	var v verdict
	select {
	case v = <-done:
	case <-ctx.Done():
		v = verdict{outcome: failed(payload.ID), err: ctx.Err()}
	}
	if v.err != nil {
		p.log.WithError(v.err).WithFields(logrus.Fields{
			"raw_id":  payload.ID,
			"payload": payload.Kind.String(),
			"outcome": v.outcome.Kind.String(),
		}).Error("check-in processing failed")
	}
	return v.outcome, v.window
}

func (p *Pipeline) stages(ctx context.Context, payload Payload, note string) verdict {
	id := payload.ID
	if strings.TrimSpace(id) == "" {
		return verdict{outcome: unknown(id)}
	}

	st, err := p.roster.Find(ctx, id)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return verdict{outcome: unknown(id)}
		}
		return verdict{outcome: failed(id), err: errors.Wrap(err, "roster lookup")}
	}

	if !st.Active() {
		return verdict{outcome: inactive(st)}
	}

	window, err := p.policy.CurrentWindow(ctx)
	if err != nil {
		return verdict{outcome: failed(id), err: errors.Wrap(err, "schedule window")}
	}
	now := p.now().In(p.loc)
	if !window.Contains(now) {
		return verdict{outcome: outOfWindow(st), window: window}
	}

	today := attendance.DateOf(now, p.loc)
	exists, err := p.store.Exists(ctx, st.ID, today)
	if err != nil {
		return verdict{outcome: failed(id), window: window, err: errors.Wrap(err, "duplicate check")}
	}
	if exists {
		return verdict{outcome: alreadyPresent(st), window: window}
	}

	// a timed-out event has already been reported; it must not write
	if err := ctx.Err(); err != nil {
		return verdict{outcome: failed(id), window: window, err: err}
	}

	if _, err := p.store.Upsert(ctx, st.ID, today, true, note); err != nil {
		return verdict{outcome: failed(id), window: window, err: errors.Wrap(err, "commit attendance")}
	}
	return verdict{outcome: succeeded(st), window: window}
}

func (p *Pipeline) entryFor(o Outcome) Entry {
	e := Entry{
		StudentID:   o.StudentID,
		StudentName: o.StudentName,
		Time:        p.now().In(p.loc).Format("15:04:05"),
		Class:       o.Kind.Class(),
		Kind:        o.Kind,
	}
	switch o.Kind {
	case UnknownStudent:
		e.StudentID = o.RawID
		e.StudentName = "unknown student"
	case ProcessingError:
		e.StudentID = UnknownID
		e.StudentName = "processing error"
	}
	return e
}
