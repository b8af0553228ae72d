package internal

import "time"

// DateLayout is the calendar-date key for sessions.
const DateLayout = "2006-01-02"

// Session is the single standup instance for one calendar date.
type Session struct {
	ID             string     `json:"id" yaml:"id"`
	Date           string     `json:"date" yaml:"date"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	RollupPostedAt *time.Time `json:"rollup_posted_at,omitempty" yaml:"rollup_posted_at,omitempty"`
}

// SessionReport bundles a session with its response records for display and export.
type SessionReport struct {
	Session Session          `json:"session" yaml:"session"`
	Records []ResponseRecord `json:"records" yaml:"records"`
}

// Counts returns how many records are in each status.
func (r *SessionReport) Counts() map[Status]int {
	counts := map[Status]int{StatusPending: 0, StatusAnswered: 0, StatusSkipped: 0}
	for _, rec := range r.Records {
		counts[rec.Status]++
	}
	return counts
}

// SessionSummary is a session row with per-status counts.
type SessionSummary struct {
	Session  Session
	Answered int
	Skipped  int
	Pending  int
}
