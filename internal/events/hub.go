package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/careers-board/internal/metrics"
)

// DefaultBuffer is the per-subscriber queue length used when none is given.
const DefaultBuffer = 16

// Subscription is a single live listener.
type Subscription struct {
	ID     string
	Events <-chan Event

	ch   chan Event
	once sync.Once
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub delivers each published event to every currently connected subscriber.
// Subscribers only see events published after they connect. A subscriber whose
// buffer is full misses the event; publishing never blocks.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	closed bool

	metrics metrics.Sink
	log     logrus.FieldLogger
}

// NewHub creates a hub. A buffer below 1 falls back to DefaultBuffer.
func NewHub(buffer int, sink metrics.Sink, log logrus.FieldLogger) *Hub {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		subs:    make(map[string]*Subscription),
		buffer:  buffer,
		metrics: sink,
		log:     log,
	}
}

// Subscribe registers a new listener. Its channel is closed by Unsubscribe or Close.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{ID: uuid.NewString(), Events: ch, ch: ch}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub
	}
	h.subs[sub.ID] = sub
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.SubscribersUpdate(n)
	h.log.WithFields(logrus.Fields{"subscriber": sub.ID, "subscribers": n}).Info("client connected")
	return sub
}

// Unsubscribe removes a listener. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub.ID]
	delete(h.subs, sub.ID)
	n := len(h.subs)
	h.mu.Unlock()

	sub.close()
	if !ok {
		return
	}
	h.metrics.SubscribersUpdate(n)
	h.log.WithFields(logrus.Fields{"subscriber": sub.ID, "subscribers": n}).Info("client disconnected")
}

// Publish implements Publisher. It always returns nil.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}
	for _, sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			h.metrics.EventDropped(ev.Name)
			h.log.WithFields(logrus.Fields{"subscriber": sub.ID, "event": ev.Name}).Warn("subscriber buffer full, event dropped")
		}
	}
	h.metrics.EventPublished(ev.Name)
	return nil
}

// Subscribers returns the number of connected listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		sub.close()
		delete(h.subs, id)
	}
	h.metrics.SubscribersUpdate(0)
}
