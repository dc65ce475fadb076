package watch

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
)

// Schedule signals on a standard five-field cron spec.
type Schedule struct {
	cron *cron.Cron
	ch   chan struct{}
}

// NewSchedule parses spec and prepares the schedule; call Start to run it.
func NewSchedule(spec string, log logger.Logger) (*Schedule, error) {
	s := &Schedule{ch: make(chan struct{}, 1)}
	s.cron = cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.Recover(cronLogger{log: log})),
	)
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Schedule) fire() {
	notify(s.ch)
}

// C returns the signal channel.
func (s *Schedule) C() Signal {
	return s.ch
}

// Start runs the scheduler in its own goroutine.
func (s *Schedule) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job.
func (s *Schedule) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug(msg, logger.Any("details", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(msg, logger.Error(err), logger.Any("details", keysAndValues))
}
