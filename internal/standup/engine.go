package standup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/internal/transport"
)

// SkipCommand is the reply that skips the rest of today's standup.
const SkipCommand = "skip"

// Banner is prefixed to the first question of a standup.
var Banner = fmt.Sprintf("Hi! It's time for today's standup. Please answer each question in a single message. "+
	"Answers can't be edited once sent. Reply %q at any time to skip today's standup.", SkipCommand)

// SkipAcknowledgement is sent to a participant after they skip.
const SkipAcknowledgement = "Got it, you've skipped today's standup."

// IsSkipCommand reports whether text is the skip command, ignoring case and
// surrounding whitespace.
func IsSkipCommand(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), SkipCommand)
}

// SkipNotice is the channel line posted when a participant skips.
func SkipNotice(displayName string) string {
	return fmt.Sprintf("@%s has skipped today's standup", displayName)
}

// Engine moves participants through their question list. All work for one
// participant is serialised; different participants proceed independently.
type Engine struct {
	store     *internal.Store
	transport transport.Transport
	publisher *Publisher
	channelID string
	timeout   time.Duration
	log       *internal.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an engine. timeout bounds each store and transport call;
// zero means unbounded.
func NewEngine(store *internal.Store, tr transport.Transport, publisher *Publisher, channelID string, timeout time.Duration) *Engine {
	return &Engine{
		store:     store,
		transport: tr,
		publisher: publisher,
		channelID: channelID,
		timeout:   timeout,
		log:       internal.NewLogger("engine"),
		locks:     make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lock(participantID string) func() {
	e.mu.Lock()
	l, ok := e.locks[participantID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[participantID] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (e *Engine) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

// Open creates the participant's record for session and sends the first
// question. If a record already exists it returns false and sends nothing.
func (e *Engine) Open(ctx context.Context, session *internal.Session, p internal.Participant, questions []string) (bool, error) {
	unlock := e.lock(p.ID)
	defer unlock()

	opCtx, cancel := e.opContext(ctx)
	_, err := e.store.CreateResponseRecord(opCtx, session.ID, p, questions)
	cancel()
	if errors.Is(err, internal.ErrDuplicateRecord) {
		e.log.Debugf("@%s already has a record for %s", p.DisplayName, session.Date)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, e.askNext(ctx, p.ID)
}

// AskNext sends the participant's next unanswered question, or completes the
// record once every question is answered. A participant with no pending
// record is left alone.
func (e *Engine) AskNext(ctx context.Context, participantID string) error {
	unlock := e.lock(participantID)
	defer unlock()
	return e.askNext(ctx, participantID)
}

func (e *Engine) askNext(ctx context.Context, participantID string) error {
	opCtx, cancel := e.opContext(ctx)
	rec, err := e.store.GetActivePendingRecord(opCtx, participantID)
	cancel()
	if errors.Is(err, internal.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if i, ok := rec.NextQuestion(); ok {
		text := rec.Questions[i]
		if i == 0 {
			text = Banner + "\n\n" + text
		}
		to := transport.Identity{ID: rec.ParticipantID, Username: rec.DisplayName}
		opCtx, cancel := e.opContext(ctx)
		defer cancel()
		if err := e.transport.SendDirect(opCtx, to, text); err != nil {
			return &internal.TransportError{Op: "direct", Target: rec.DisplayName, Err: err}
		}
		return nil
	}

	opCtx, cancel = e.opContext(ctx)
	done, err := e.store.SetStatus(opCtx, rec.ID, internal.StatusAnswered)
	cancel()
	if errors.Is(err, internal.ErrTerminalStatus) {
		return nil
	}
	if err != nil {
		return err
	}
	e.log.Infof("@%s answered every question", done.DisplayName)

	opCtx, cancel = e.opContext(ctx)
	defer cancel()
	return e.publisher.PublishIndividual(opCtx, done)
}

// OnInboundMessage applies one direct message: a skip closes the active
// record, anything else is stored verbatim as the next answer.
func (e *Engine) OnInboundMessage(ctx context.Context, msg transport.InboundMessage) error {
	if msg.Edited || msg.From.ID == e.transport.Self().ID {
		return nil
	}
	unlock := e.lock(msg.From.ID)
	defer unlock()

	opCtx, cancel := e.opContext(ctx)
	rec, err := e.store.GetActivePendingRecord(opCtx, msg.From.ID)
	cancel()
	if errors.Is(err, internal.ErrRecordNotFound) {
		e.log.Debugf("ignoring message from @%s: no standup in progress", msg.From.Username)
		return nil
	}
	if err != nil {
		return err
	}

	if IsSkipCommand(msg.Text) {
		return e.skip(ctx, rec)
	}

	opCtx, cancel = e.opContext(ctx)
	_, err = e.store.AppendAnswer(opCtx, rec.ID, msg.Text)
	cancel()
	switch {
	case errors.Is(err, internal.ErrTerminalStatus):
		return nil
	case errors.Is(err, internal.ErrAnswersComplete):
		// Fully answered but never closed; askNext completes it.
	case err != nil:
		return err
	}
	return e.askNext(ctx, msg.From.ID)
}

func (e *Engine) skip(ctx context.Context, rec *internal.ResponseRecord) error {
	opCtx, cancel := e.opContext(ctx)
	_, err := e.store.SetStatus(opCtx, rec.ID, internal.StatusSkipped)
	cancel()
	if errors.Is(err, internal.ErrTerminalStatus) {
		return nil
	}
	if err != nil {
		return err
	}
	e.log.Infof("@%s skipped", rec.DisplayName)

	to := transport.Identity{ID: rec.ParticipantID, Username: rec.DisplayName}
	opCtx, cancel = e.opContext(ctx)
	if err := e.transport.SendDirect(opCtx, to, SkipAcknowledgement); err != nil {
		e.log.Warnf("%v", &internal.TransportError{Op: "direct", Target: rec.DisplayName, Err: err})
	}
	cancel()

	opCtx, cancel = e.opContext(ctx)
	defer cancel()
	if err := e.transport.SendToChannel(opCtx, e.channelID, SkipNotice(rec.DisplayName), nil); err != nil {
		e.log.Warnf("%v", &internal.TransportError{Op: "channel", Target: e.channelID, Err: err})
	}
	return nil
}

// Handle is a transport.Handler that logs processing failures.
func (e *Engine) Handle(ctx context.Context, msg transport.InboundMessage) {
	if err := e.OnInboundMessage(ctx, msg); err != nil {
		e.log.Errorf("message from @%s: %v", msg.From.Username, err)
	}
}
