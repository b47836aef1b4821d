// Package metrics records operational counters for the careers server.
package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations must not block or return errors.
type Sink interface {
	// Registry and pipeline
	JobCreated()
	ApplicationSubmitted(outcome string)
	BlobStored(bytes int64)
	BlobCompensated()

	// Notification hub
	EventPublished(name string)
	EventDropped(name string)
	SubscribersUpdate(count int)

	// Janitor
	OrphansRemoved(count int)

	// HTTP
	RequestObserved(method string, status int, duration time.Duration)
}

// Outcome constants for ApplicationSubmitted.
const (
	OutcomeAccepted        = "accepted"
	OutcomeRejected        = "rejected"
	OutcomeStorageError    = "storage_error"
	OutcomePersistenceFail = "persistence_error"
)
