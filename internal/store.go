package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// storeTimeLayout is fixed width so stored timestamps sort lexically.
const storeTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = `id, session_id, participant_id, display_name, questions, answers, status, created_at, updated_at`

// Store persists standup sessions and response records in SQLite. It owns the
// uniqueness rules and the status state machine; every mutation is a single
// transaction.
type Store struct {
	db    *sql.DB
	clock Clock
}

// NewStore wraps db, applying schema migrations first.
func NewStore(db *sql.DB, clock Clock) (*Store, error) {
	if db == nil {
		return nil, &StoreError{Op: "init", Err: errors.New("nil db")}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db, clock: clock}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return wrapStore("ping", s.db.PingContext(ctx))
}

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storeTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(storeTimeLayout, s)
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess           Session
		created        string
		rollupPostedAt sql.NullString
	)
	if err := row.Scan(&sess.ID, &sess.Date, &created, &rollupPostedAt); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	sess.CreatedAt = t
	if rollupPostedAt.Valid {
		posted, err := parseTime(rollupPostedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse rollup_posted_at: %w", err)
		}
		sess.RollupPostedAt = &posted
	}
	return &sess, nil
}

func scanRecord(row scanner) (*ResponseRecord, error) {
	var (
		rec                ResponseRecord
		questions, answers string
		status             string
		created, updated   string
	)
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.ParticipantID, &rec.DisplayName, &questions, &answers, &status, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if rec.Questions, err = decodeList(questions); err != nil {
		return nil, fmt.Errorf("decode questions for record %d: %w", rec.ID, err)
	}
	if rec.Answers, err = decodeList(answers); err != nil {
		return nil, fmt.Errorf("decode answers for record %d: %w", rec.ID, err)
	}
	if rec.Status, err = ParseStatus(status); err != nil {
		return nil, fmt.Errorf("record %d: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at for record %d: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at for record %d: %w", rec.ID, err)
	}
	return &rec, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- Sessions ---

// GetOrCreateSession returns the session for date, creating it if none exists.
// The bool reports whether this call created it; a concurrent loser observes
// the winner's row.
func (s *Store) GetOrCreateSession(ctx context.Context, date string) (*Session, bool, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, false, &StoreError{Op: "create_session", Err: fmt.Errorf("invalid date %q: %w", date, err)}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, date, created_at) VALUES (?, ?, ?) ON CONFLICT(date) DO NOTHING`,
		uuid.NewString(), date, formatTime(s.clock.Now()))
	if err != nil {
		return nil, false, wrapStore("create_session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, wrapStore("create_session", err)
	}
	sess, err := s.GetSessionByDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	return sess, n == 1, nil
}

// GetSession loads a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, date, created_at, rollup_posted_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return sess, wrapStore("get_session", err)
}

// GetSessionByDate loads the session for a calendar date.
func (s *Store) GetSessionByDate(ctx context.Context, date string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, date, created_at, rollup_posted_at FROM sessions WHERE date = ?`, date)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return sess, wrapStore("get_session", err)
}

// ListSessions returns the most recent sessions with per-status counts. A
// non-positive limit returns all sessions.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.date, s.created_at, s.rollup_posted_at,
		       COALESCE(SUM(CASE WHEN r.status = 'answered' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN r.status = 'skipped' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN r.status = 'pending' THEN 1 ELSE 0 END), 0)
		FROM sessions s
		LEFT JOIN responses r ON r.session_id = s.id
		GROUP BY s.id
		ORDER BY s.date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, wrapStore("list_sessions", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			summary        SessionSummary
			created        string
			rollupPostedAt sql.NullString
		)
		if err := rows.Scan(&summary.Session.ID, &summary.Session.Date, &created, &rollupPostedAt,
			&summary.Answered, &summary.Skipped, &summary.Pending); err != nil {
			return nil, wrapStore("list_sessions", err)
		}
		if t, err := parseTime(created); err == nil {
			summary.Session.CreatedAt = t
		}
		if rollupPostedAt.Valid {
			if t, err := parseTime(rollupPostedAt.String); err == nil {
				summary.Session.RollupPostedAt = &t
			}
		}
		out = append(out, summary)
	}
	return out, wrapStore("list_sessions", rows.Err())
}

// ClaimRollup marks the session's rollup as posted. It returns true for exactly
// one caller per session.
func (s *Store) ClaimRollup(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET rollup_posted_at = ? WHERE id = ? AND rollup_posted_at IS NULL`,
		formatTime(at), sessionID)
	if err != nil {
		return false, wrapStore("claim_rollup", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapStore("claim_rollup", err)
	}
	return n == 1, nil
}

// ListUnpostedRollups returns sessions created at or after since whose rollup
// has not been claimed yet.
func (s *Store) ListUnpostedRollups(ctx context.Context, since time.Time) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, created_at, rollup_posted_at FROM sessions
		 WHERE rollup_posted_at IS NULL AND created_at >= ? ORDER BY created_at`,
		formatTime(since))
	if err != nil {
		return nil, wrapStore("list_unposted_rollups", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, wrapStore("list_unposted_rollups", err)
		}
		out = append(out, *sess)
	}
	return out, wrapStore("list_unposted_rollups", rows.Err())
}

// --- Response records ---

// CreateResponseRecord inserts a pending record for participant in the
// session. It returns ErrDuplicateRecord if one already exists for the pair;
// the existing record is left untouched.
func (s *Store) CreateResponseRecord(ctx context.Context, sessionID string, p Participant, questions []string) (*ResponseRecord, error) {
	if len(questions) == 0 {
		return nil, &StoreError{Op: "create_record", Err: errors.New("question list is empty")}
	}
	encoded, err := encodeList(questions)
	if err != nil {
		return nil, &StoreError{Op: "create_record", Err: err}
	}
	now := formatTime(s.clock.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (session_id, participant_id, display_name, questions, answers, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, '[]', ?, ?, ?)
		ON CONFLICT(session_id, participant_id) DO NOTHING`,
		sessionID, p.ID, p.DisplayName, encoded, string(StatusPending), now, now)
	if err != nil {
		return nil, wrapStore("create_record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, wrapStore("create_record", err)
	}
	if n == 0 {
		return nil, ErrDuplicateRecord
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapStore("create_record", err)
	}
	return s.GetRecord(ctx, id)
}

// GetRecord loads a record by id.
func (s *Store) GetRecord(ctx context.Context, id int64) (*ResponseRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM responses WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, wrapStore("get_record", err)
}

// GetActivePendingRecord returns the most recently created pending record for
// the participant across all sessions.
func (s *Store) GetActivePendingRecord(ctx context.Context, participantID string) (*ResponseRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM responses
		WHERE participant_id = ? AND status = 'pending'
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, participantID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, wrapStore("get_active_record", err)
}

// AppendAnswer appends text to the record's answers. The write is conditioned
// on the record still being pending, so it cannot interleave with SetStatus.
func (s *Store) AppendAnswer(ctx context.Context, recordID int64, text string) (*ResponseRecord, error) {
	var updated *ResponseRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rec, err := scanRecord(tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM responses WHERE id = ?`, recordID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		if rec.Status.Terminal() {
			return ErrTerminalStatus
		}
		if len(rec.Answers) >= len(rec.Questions) {
			return ErrAnswersComplete
		}
		rec.Answers = append(rec.Answers, text)
		encoded, err := encodeList(rec.Answers)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		res, err := tx.ExecContext(ctx,
			`UPDATE responses SET answers = ?, updated_at = ? WHERE id = ? AND status = 'pending'`,
			encoded, formatTime(now), recordID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return ErrTerminalStatus
		}
		rec.UpdatedAt = now.UTC()
		updated = rec
		return nil
	})
	if err != nil {
		return nil, wrapStore("append_answer", err)
	}
	return updated, nil
}

// SetStatus moves a pending record to a terminal status. Answered requires
// every question to have an answer. Terminal records are never changed.
func (s *Store) SetStatus(ctx context.Context, recordID int64, status Status) (*ResponseRecord, error) {
	if !status.Terminal() {
		return nil, ErrInvalidTransition
	}
	var updated *ResponseRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rec, err := scanRecord(tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM responses WHERE id = ?`, recordID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		if rec.Status.Terminal() {
			return ErrTerminalStatus
		}
		if !rec.Status.CanTransition(status) {
			return ErrInvalidTransition
		}
		if status == StatusAnswered && len(rec.Answers) != len(rec.Questions) {
			return fmt.Errorf("%w: %d of %d questions answered", ErrInvalidTransition, len(rec.Answers), len(rec.Questions))
		}
		now := s.clock.Now()
		res, err := tx.ExecContext(ctx,
			`UPDATE responses SET status = ?, updated_at = ? WHERE id = ? AND status = 'pending'`,
			string(status), formatTime(now), recordID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return ErrTerminalStatus
		}
		rec.Status = status
		rec.UpdatedAt = now.UTC()
		updated = rec
		return nil
	})
	if err != nil {
		return nil, wrapStore("set_status", err)
	}
	return updated, nil
}

// ListNonTerminal returns the session's records that are still pending or
// were skipped, in creation order. These are the rollup candidates.
func (s *Store) ListNonTerminal(ctx context.Context, sessionID string) ([]ResponseRecord, error) {
	return s.listRecords(ctx, "list_non_terminal",
		`SELECT `+recordColumns+` FROM responses WHERE session_id = ? AND status IN ('pending', 'skipped') ORDER BY id`,
		sessionID)
}

// ListRecords returns every record of the session in creation order.
func (s *Store) ListRecords(ctx context.Context, sessionID string) ([]ResponseRecord, error) {
	return s.listRecords(ctx, "list_records",
		`SELECT `+recordColumns+` FROM responses WHERE session_id = ? ORDER BY id`,
		sessionID)
}

func (s *Store) listRecords(ctx context.Context, op, query string, args ...any) ([]ResponseRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore(op, err)
	}
	defer rows.Close()

	out := []ResponseRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrapStore(op, err)
		}
		out = append(out, *rec)
	}
	return out, wrapStore(op, rows.Err())
}

// LoadReport returns the session for date together with all its records.
func (s *Store) LoadReport(ctx context.Context, date string) (*SessionReport, error) {
	sess, err := s.GetSessionByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	records, err := s.ListRecords(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &SessionReport{Session: *sess, Records: records}, nil
}
