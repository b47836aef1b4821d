// Package events fans out domain events to live subscribers.
//
// Events are produced by the job registry and the submission pipeline as
// return values. A Dispatcher hands them to one or more Publishers after the
// originating operation has committed.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/careers-board/internal/db"
)

// Event names
const (
	JobCreated       = "job:created"
	CandidateApplied = "candidate:applied"
)

// Event is a named notification with a JSON payload.
type Event struct {
	Name       string          `json:"event"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// New builds an event, marshaling payload as its data.
func New(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}
	return Event{Name: name, Data: data, OccurredAt: time.Now().UTC()}, nil
}

// NewJobCreated carries the full job record.
func NewJobCreated(job *db.Job) (Event, error) {
	return New(JobCreated, job)
}

// NewCandidateApplied carries the candidate record plus the job title.
func NewCandidateApplied(c *db.Candidate) (Event, error) {
	return New(CandidateApplied, c)
}
