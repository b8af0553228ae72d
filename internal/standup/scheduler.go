package standup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iksnae/standup-bot/internal"
)

// Scheduler triggers the daily standup on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	log  *internal.Logger
}

// NewScheduler creates a scheduler evaluating expressions in loc.
func NewScheduler(loc *time.Location) *Scheduler {
	logger := cron.PrintfLogger(internal.StdLogger())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		log: internal.NewLogger("scheduler"),
	}
}

// Schedule registers the orchestrator's daily run under spec, a standard
// five-field expression or descriptor such as "@daily".
func (s *Scheduler) Schedule(ctx context.Context, spec string, o *Orchestrator) error {
	_, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := o.RunDailyStandup(ctx); err != nil {
			s.log.Errorf("daily standup: %v", err)
		}
	})
	if err != nil {
		return &internal.ConfigError{Field: "schedule", Err: err}
	}
	return nil
}

// Next returns the next scheduled run, or the zero time if none.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the scheduler and waits for a running standup to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
