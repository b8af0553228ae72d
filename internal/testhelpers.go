package internal

import (
	"time"
)

// CreateTestRecord creates a pending record with no answers
func CreateTestRecord(participantID string, questions []string) *ResponseRecord {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return &ResponseRecord{
		ID:            1,
		SessionID:     "session-test",
		ParticipantID: participantID,
		DisplayName:   participantID,
		Questions:     cloneStrings(questions),
		Answers:       []string{},
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateTestReport creates a report with one answered, one skipped and one pending record
func CreateTestReport(date string) *SessionReport {
	created := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	questions := []string{"What did you do yesterday?", "What will you do today?"}

	alice := CreateTestRecord("alice", questions)
	alice.ID = 1
	alice.Answers = []string{"Shipped the importer", "Reviews"}
	alice.Status = StatusAnswered

	bob := CreateTestRecord("bob", questions)
	bob.ID = 2
	bob.Answers = []string{"Oncall"}
	bob.Status = StatusSkipped

	carol := CreateTestRecord("carol", questions)
	carol.ID = 3

	return &SessionReport{
		Session: Session{
			ID:        "session-" + date,
			Date:      date,
			CreatedAt: created,
		},
		Records: []ResponseRecord{*alice, *bob, *carol},
	}
}
