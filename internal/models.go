package internal

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a participant's response record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
	StatusSkipped  Status = "skipped"
)

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAnswered, StatusSkipped:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusAnswered || s == StatusSkipped
}

// CanTransition reports whether s may move to next. Only pending records move,
// and only to a terminal state.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.Terminal()
}

// Participant is a resolved standup member.
type Participant struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// ResponseRecord is one participant's progress through a session's questions.
type ResponseRecord struct {
	ID            int64     `json:"id" yaml:"id"`
	SessionID     string    `json:"session_id" yaml:"session_id"`
	ParticipantID string    `json:"participant_id" yaml:"participant_id"`
	DisplayName   string    `json:"display_name" yaml:"display_name"`
	Questions     []string  `json:"questions" yaml:"questions"`
	Answers       []string  `json:"answers" yaml:"answers"`
	Status        Status    `json:"status" yaml:"status"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// NextQuestion returns the index of the next unanswered question and whether
// one remains.
func (r *ResponseRecord) NextQuestion() (int, bool) {
	i := len(r.Answers)
	return i, i < len(r.Questions)
}

// QA pairs a question with the participant's answer.
type QA struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Pairs returns the answered questions in order.
func (r *ResponseRecord) Pairs() []QA {
	pairs := make([]QA, 0, len(r.Answers))
	for i, answer := range r.Answers {
		if i >= len(r.Questions) {
			break
		}
		pairs = append(pairs, QA{Question: r.Questions[i], Answer: answer})
	}
	return pairs
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
