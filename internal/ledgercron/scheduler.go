package ledgercron

import (
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"schoolattend/internal/checkin"
)

// Scheduler closes the session ledger on a cron schedule, normally at the
// institution's midnight.
type Scheduler struct {
	cronEngine *cron.Cron
	ledger     *checkin.Ledger
	spec       string
	log        logrus.FieldLogger
}

// New builds a scheduler evaluating spec (standard five-field cron) in loc.
func New(ledger *checkin.Ledger, spec string, loc *time.Location, log logrus.FieldLogger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		ledger:     ledger,
		spec:       spec,
		log:        log,
	}
}

// Start registers the rotation job and starts the cron engine.
func (s *Scheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.spec, s.rotate); err != nil {
		return errors.Wrapf(err, "ledger reset spec %q", s.spec)
	}
	s.cronEngine.Start()
	s.log.WithField("spec", s.spec).Info("ledger rotation scheduled")
	return nil
}

// Next reports when the rotation job fires next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cronEngine.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops the engine and waits for a running rotation to finish.
func (s *Scheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.log.Info("ledger rotation stopped")
}

func (s *Scheduler) rotate() {
	counts := s.ledger.Counts()
	s.ledger.Reset()
	s.log.WithFields(logrus.Fields{
		"success":   counts.Success,
		"duplicate": counts.Duplicate,
		"error":     counts.Error,
		"total":     counts.Total,
	}).Info("session ledger closed")
}
