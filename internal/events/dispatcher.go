package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Publisher receives events from a Dispatcher.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Dispatcher forwards events to every configured publisher in order.
// A failing publisher is logged and does not stop delivery to the others.
type Dispatcher struct {
	publishers []Publisher
	log        logrus.FieldLogger
}

// NewDispatcher creates a dispatcher over the given publishers.
func NewDispatcher(log logrus.FieldLogger, publishers ...Publisher) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{publishers: publishers, log: log}
}

// Dispatch publishes each event to each publisher.
func (d *Dispatcher) Dispatch(ctx context.Context, evs ...Event) {
	for _, ev := range evs {
		for _, p := range d.publishers {
			if err := p.Publish(ctx, ev); err != nil {
				d.log.WithError(err).WithField("event", ev.Name).Error("failed to publish event")
			}
		}
	}
}
