package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-assessment-service/internal/domain"
)

// DefaultEventChannel is the pub/sub channel shared by every instance.
const DefaultEventChannel = "quiz:events"

// EventPublisher sends events to a Redis pub/sub channel so every service
// instance can fan them out to its own receivers.
type EventPublisher struct {
	client  *redis.Client
	channel string
}

func NewEventPublisher(client *redis.Client, channel string) *EventPublisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &EventPublisher{client: client, channel: channel}
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, raw).Err()
}

// EventSink receives relayed events, normally the in-process hub.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}

// EventRelay subscribes to the shared channel and forwards every event into
// a local sink.
type EventRelay struct {
	client  *redis.Client
	channel string
	sink    EventSink
	logger  *slog.Logger
}

func NewEventRelay(client *redis.Client, channel string, sink EventSink, logger *slog.Logger) *EventRelay {
	if channel == "" {
		channel = DefaultEventChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRelay{client: client, channel: channel, sink: sink, logger: logger}
}

// wireEvent keeps the payload undecoded so relayed events re-encode
// byte-for-byte.
type wireEvent struct {
	ID         string           `json:"id"`
	Type       domain.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurredAt"`
	Payload    json.RawMessage  `json:"payload"`
}

// Run blocks until ctx is done. Undecodable messages are logged and skipped.
func (r *EventRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("event relay subscribed", "channel", r.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var wire wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
				r.logger.Warn("relay dropped undecodable event", "error", err)
				continue
			}
			event := domain.Event{ID: wire.ID, Type: wire.Type, OccurredAt: wire.OccurredAt, Payload: wire.Payload}
			if err := r.sink.Publish(ctx, event); err != nil {
				r.logger.Warn("relay sink rejected event", "event_id", event.ID, "error", err)
			}
		}
	}
}
