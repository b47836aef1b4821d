package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) JobCreated()                                                {}
func (n *NoopSink) ApplicationSubmitted(outcome string)                        {}
func (n *NoopSink) BlobStored(bytes int64)                                     {}
func (n *NoopSink) BlobCompensated()                                           {}
func (n *NoopSink) EventPublished(name string)                                 {}
func (n *NoopSink) EventDropped(name string)                                   {}
func (n *NoopSink) SubscribersUpdate(count int)                                {}
func (n *NoopSink) OrphansRemoved(count int)                                   {}
func (n *NoopSink) RequestObserved(method string, status int, d time.Duration) {}
