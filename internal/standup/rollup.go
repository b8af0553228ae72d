package standup

import (
	"context"
	"sync"
	"time"

	"github.com/iksnae/standup-bot/internal"
)

// RecoveryWindow bounds how far back Recover looks for unposted rollups.
const RecoveryWindow = 24 * time.Hour

type rollupPublisher interface {
	PublishRollup(ctx context.Context, sessionID string) (bool, error)
}

type stopper interface {
	Stop() bool
}

// RollupScheduler keeps one rollup task per session. The deadline is the
// session's creation time plus the rollup delay, so a restart does not push
// it back.
type RollupScheduler struct {
	store     *internal.Store
	publisher rollupPublisher
	delay     time.Duration
	timeout   time.Duration
	clock     internal.Clock
	log       *internal.Logger

	// afterFunc is time.AfterFunc outside tests.
	afterFunc func(d time.Duration, f func()) stopper

	mu      sync.Mutex
	tasks   map[string]stopper
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRollupScheduler creates a scheduler. timeout bounds each rollup publish;
// zero means unbounded.
func NewRollupScheduler(store *internal.Store, publisher rollupPublisher, delay, timeout time.Duration, clock internal.Clock) *RollupScheduler {
	if clock == nil {
		clock = internal.SystemClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RollupScheduler{
		store:     store,
		publisher: publisher,
		delay:     delay,
		timeout:   timeout,
		clock:     clock,
		log:       internal.NewLogger("rollup"),
		afterFunc: func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) },
		tasks:     make(map[string]stopper),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Deadline is when the session's rollup is due.
func (s *RollupScheduler) Deadline(session internal.Session) time.Time {
	return session.CreatedAt.Add(s.delay)
}

// Arm schedules the session's rollup. It returns false if a task for the
// session already exists or the scheduler has been stopped. Overdue rollups
// fire immediately.
func (s *RollupScheduler) Arm(session internal.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if _, ok := s.tasks[session.ID]; ok {
		return false
	}

	wait := s.Deadline(session).Sub(s.clock.Now())
	if wait < 0 {
		wait = 0
	}
	id := session.ID
	s.tasks[id] = s.afterFunc(wait, func() { s.fire(id) })
	s.log.Debugf("rollup for %s armed, due in %s", session.Date, wait.Round(time.Second))
	return true
}

// Armed reports whether a task exists for the session.
func (s *RollupScheduler) Armed(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[sessionID]
	return ok
}

func (s *RollupScheduler) fire(sessionID string) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if ctx.Err() != nil {
		return
	}
	if _, err := s.publisher.PublishRollup(ctx, sessionID); err != nil {
		s.log.Errorf("rollup for session %s: %v", sessionID, err)
	}
}

// Recover arms the rollups of recent sessions that were never posted, e.g.
// after a restart. It returns how many were armed.
func (s *RollupScheduler) Recover(ctx context.Context) (int, error) {
	sessions, err := s.store.ListUnpostedRollups(ctx, s.clock.Now().Add(-RecoveryWindow))
	if err != nil {
		return 0, err
	}
	armed := 0
	for _, sess := range sessions {
		if s.Arm(sess) {
			armed++
		}
	}
	if armed > 0 {
		s.log.Infof("recovered %d pending rollups", armed)
	}
	return armed, nil
}

// Stop cancels pending rollups. Rollups already running are cancelled through
// their context.
func (s *RollupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, t := range s.tasks {
		t.Stop()
	}
	s.cancel()
}
