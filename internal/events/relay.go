package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/careers-board/internal/schemas"
	schemafiles "github.com/jonathan/careers-board/schemas"
)

// DefaultChannel is the Redis pub/sub channel shared by all instances.
const DefaultChannel = "careers:events"

// Envelope wraps an event relayed between instances.
type Envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisRelay shares events between server instances through Redis pub/sub.
// Publish sends local events out; Run delivers events from other instances
// to the local publisher. Messages from this instance are ignored.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	local   Publisher
	log     logrus.FieldLogger
}

// NewRedisRelay creates a relay that forwards remote events to local.
func NewRedisRelay(client *redis.Client, channel string, local Publisher, log logrus.FieldLogger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   local,
		log:     log.WithField("component", "relay"),
	}
}

// Origin identifies this instance in relayed envelopes.
func (r *RedisRelay) Origin() string {
	return r.origin
}

// Publish implements Publisher.
func (r *RedisRelay) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(Envelope{Origin: r.origin, Event: ev})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the relay channel until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close() //nolint:errcheck

	// Wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("redis subscribe: %w", err)
	}
	r.log.WithField("channel", r.channel).Info("relay subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := r.handleMessage(ctx, []byte(msg.Payload)); err != nil {
				r.log.WithError(err).Warn("dropping relayed message")
			}
		}
	}
}

func (r *RedisRelay) handleMessage(ctx context.Context, payload []byte) error {
	if err := schemas.Validate(schemafiles.EventEnvelope, payload); err != nil {
		return err
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.Origin == r.origin {
		return nil
	}
	return r.local.Publish(ctx, env.Event)
}
