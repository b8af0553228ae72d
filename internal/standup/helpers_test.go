package standup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/internal/transport"
	"github.com/iksnae/standup-bot/testutil"
)

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type harness struct {
	cfg       *internal.Config
	clock     *internal.FixedClock
	store     *internal.Store
	transport *testutil.RecordingTransport
	publisher *Publisher
	engine    *Engine
	directory *Directory
	rollups   *RollupScheduler
	orch      *Orchestrator

	mu     sync.Mutex
	timers []*fakeTimer
}

func newHarness(t *testing.T, participants []string, questions ...string) *harness {
	t.Helper()
	if len(questions) == 0 {
		questions = []string{"Q1", "Q2", "Q3"}
	}
	h := &harness{
		cfg: &internal.Config{
			BotUsername:        "standup-bot",
			Channel:            "standup",
			Participants:       participants,
			Questions:          questions,
			RollupDelayMinutes: 30,
		},
		clock:     &internal.FixedClock{T: testNow},
		transport: testutil.NewRecordingTransport("standup-bot"),
	}

	store, err := internal.NewStore(testutil.CreateInMemoryDB(t), h.clock)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	h.store = store

	ctx := context.Background()
	channelID, err := h.transport.ResolveChannel(ctx, h.cfg.Channel)
	if err != nil {
		t.Fatalf("ResolveChannel() error = %v", err)
	}
	h.directory, err = NewDirectory(ctx, h.transport, participants, h.transport.Self())
	if err != nil {
		t.Fatalf("NewDirectory() error = %v", err)
	}
	h.publisher = NewPublisher(store, h.transport, channelID, h.clock)
	h.engine = NewEngine(store, h.transport, h.publisher, channelID, time.Second)
	h.rollups = NewRollupScheduler(store, h.publisher, h.cfg.RollupDelay(), time.Second, h.clock)
	h.rollups.afterFunc = func(d time.Duration, f func()) stopper {
		h.mu.Lock()
		defer h.mu.Unlock()
		ft := &fakeTimer{d: d, f: f}
		h.timers = append(h.timers, ft)
		return ft
	}
	h.orch = NewOrchestrator(h.cfg, store, h.directory, h.engine, h.rollups, h.clock)
	t.Cleanup(h.rollups.Stop)
	return h
}

// fireTimers runs every armed rollup that has not been stopped.
func (h *harness) fireTimers() {
	h.mu.Lock()
	timers := append([]*fakeTimer(nil), h.timers...)
	h.mu.Unlock()
	for _, ft := range timers {
		if !ft.stopped {
			ft.f()
		}
	}
}

func (h *harness) reply(t *testing.T, username, text string) {
	t.Helper()
	msg := transport.InboundMessage{
		From: transport.Identity{ID: "U-" + username, Username: username},
		Text: text,
	}
	if err := h.engine.OnInboundMessage(context.Background(), msg); err != nil {
		t.Fatalf("OnInboundMessage(%s, %q) error = %v", username, text, err)
	}
}

func (h *harness) record(t *testing.T, sessionID, username string) internal.ResponseRecord {
	t.Helper()
	records, err := h.store.ListRecords(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	for _, rec := range records {
		if rec.DisplayName == username {
			return rec
		}
	}
	t.Fatalf("no record for %s", username)
	return internal.ResponseRecord{}
}

func (h *harness) start(t *testing.T) *internal.Session {
	t.Helper()
	sess, err := h.orch.RunDailyStandup(context.Background())
	if err != nil {
		t.Fatalf("RunDailyStandup() error = %v", err)
	}
	return sess
}
