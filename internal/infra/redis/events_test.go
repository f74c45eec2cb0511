package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/notify"
)

func TestEventRelayForwardsPublishedEvents(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	hub := notify.NewHub(4, nil)
	received, cancelSub := hub.Subscribe(nil)
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	relay := NewEventRelay(newClient(mr), "", hub, nil)
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	waitForSubscriber(t, mr, DefaultEventChannel)

	publisher := NewEventPublisher(newClient(mr), "")
	event := domain.NewEvent(domain.EventRankChanged, domain.RankChanged{UserID: "u1", UserName: "Ayşe", OldRank: 3, NewRank: 1})
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.ID != event.ID || got.Type != domain.EventRankChanged {
			t.Fatalf("unexpected relayed event %+v", got)
		}
		raw, ok := got.Payload.(json.RawMessage)
		if !ok {
			t.Fatalf("expected raw payload, got %T", got.Payload)
		}
		var payload domain.RankChanged
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.NewRank != 1 || payload.OldRank != 3 {
			t.Fatalf("unexpected payload %+v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for relayed event")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("relay returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("relay did not stop")
	}
}

func TestEventRelaySkipsGarbage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	hub := notify.NewHub(4, nil)
	received, cancelSub := hub.Subscribe(nil)
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewEventRelay(newClient(mr), "events", hub, nil).Run(ctx) }()
	waitForSubscriber(t, mr, "events")

	mr.Publish("events", "not json")
	event := domain.NewEvent(domain.EventQuizCompleted, domain.QuizCompleted{UserID: "u2"})
	if err := NewEventPublisher(newClient(mr), "events").Publish(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.ID != event.ID {
			t.Fatalf("expected the valid event, got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for relayed event")
	}
}

func waitForSubscriber(t *testing.T, mr *miniredis.Miniredis, channel string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mr.PubSubNumSub(channel)[channel] > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("relay never subscribed to %s", channel)
}
