// Package notify fans events out to connected receivers in process.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"quiz-assessment-service/internal/domain"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("notify: hub closed")

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Filter selects which events a subscriber receives. A nil filter accepts all.
type Filter func(domain.Event) bool

// ForTypes accepts only the listed event types; no types accepts all.
func ForTypes(types ...domain.EventType) Filter {
	if len(types) == 0 {
		return nil
	}
	allowed := make(map[domain.EventType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(e domain.Event) bool {
		_, ok := allowed[e.Type]
		return ok
	}
}

// Hub broadcasts events to subscribers without ever blocking the publisher:
// a full subscriber queue drops its oldest event.
type Hub struct {
	buffer int
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[chan domain.Event]Filter
	closed      bool
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		buffer:      buffer,
		logger:      logger,
		subscribers: make(map[chan domain.Event]Filter),
	}
}

// Subscribe registers a receiver. The returned cancel func unregisters it and
// closes the channel; calling it twice is safe.
func (h *Hub) Subscribe(filter Filter) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[ch] = filter
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish implements app.EventPublisher.
func (h *Hub) Publish(_ context.Context, event domain.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.broadcastLocked(event)
	return nil
}

// Subscribers is the current receiver count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}

func (h *Hub) broadcastLocked(event domain.Event) {
	for ch, filter := range h.subscribers {
		if filter != nil && !filter(event) {
			continue
		}
		select {
		case ch <- event:
		default:
			select {
			case dropped := <-ch:
				h.logger.Debug("slow subscriber, dropped oldest event", "event_id", dropped.ID, "type", dropped.Type)
			default:
			}
			ch <- event
		}
	}
}
