package standup

import (
	"context"
	"time"

	"github.com/iksnae/standup-bot/internal"
)

// Orchestrator starts each day's standup.
type Orchestrator struct {
	cfg       *internal.Config
	store     *internal.Store
	directory *Directory
	engine    *Engine
	rollups   *RollupScheduler
	clock     internal.Clock
	log       *internal.Logger
}

// NewOrchestrator wires the components of a standup run.
func NewOrchestrator(cfg *internal.Config, store *internal.Store, directory *Directory, engine *Engine, rollups *RollupScheduler, clock internal.Clock) *Orchestrator {
	if clock == nil {
		clock = internal.SystemClock{}
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		directory: directory,
		engine:    engine,
		rollups:   rollups,
		clock:     clock,
		log:       internal.NewLogger("orchestrator"),
	}
}

// Today is the session date for now in the configured timezone.
func (o *Orchestrator) Today() string {
	return o.clock.Now().In(o.cfg.Location()).Format(internal.DateLayout)
}

// RunDailyStandup gets or creates today's session, prompts every participant
// that has no record yet, one at a time with the pacing delay between prompts,
// and arms the session's rollup. Running it twice on the same day prompts
// nobody twice.
func (o *Orchestrator) RunDailyStandup(ctx context.Context) (*internal.Session, error) {
	date := o.Today()
	session, created, err := o.store.GetOrCreateSession(ctx, date)
	if err != nil {
		return nil, err
	}
	if created {
		o.log.Infof("started standup %s for %d participants", date, o.directory.Len())
	} else {
		o.log.Infof("standup %s already exists, prompting anyone missing", date)
	}

	prompted := 0
	for _, p := range o.directory.Participants() {
		if prompted > 0 {
			if err := sleepContext(ctx, o.cfg.PacingDelay); err != nil {
				return session, err
			}
		}
		opened, err := o.engine.Open(ctx, session, p, o.cfg.QuestionSnapshot())
		if err != nil {
			o.log.Errorf("opening standup for @%s: %v", p.DisplayName, err)
		}
		if opened {
			prompted++
		}
	}
	o.log.Debugf("prompted %d participants for %s", prompted, date)

	o.rollups.Arm(*session)
	return session, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
