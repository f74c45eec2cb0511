package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/notify"
)

const writeWait = 10 * time.Second

// EventsHandler streams hub events to websocket clients.
type EventsHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewEventsHandler(hub *notify.Hub, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type connectedPayload struct {
	Types []domain.EventType `json:"types"`
}

// ServeWS upgrades the request and forwards events until either side closes.
// ?types=quiz_completed,rank_changed narrows the stream.
func (h *EventsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	types, ok := parseTypes(r.URL.Query().Get("types"))
	if !ok {
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	// The server's read timeout survives the hijack.
	_ = conn.SetReadDeadline(time.Time{})

	events, cancel := h.hub.Subscribe(notify.ForTypes(types...))
	defer cancel()

	send := make(chan any, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "error", err)
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- event:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg any) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	reply(outboundMessage[connectedPayload]{Type: "connected", Payload: connectedPayload{Types: types}})
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var ok bool
		switch inbound.Type {
		case "ping":
			ok = reply(outboundMessage[struct{}]{Type: "pong"})
		default:
			ok = reply(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
		if !ok {
			break
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func parseTypes(raw string) ([]domain.EventType, bool) {
	if raw == "" {
		return []domain.EventType{}, true
	}
	var out []domain.EventType
	for _, part := range strings.Split(raw, ",") {
		t := domain.EventType(strings.TrimSpace(part))
		switch t {
		case domain.EventQuizCompleted, domain.EventRankChanged, domain.EventNewTestCreated:
			out = append(out, t)
		case "":
		default:
			return nil, false
		}
	}
	return out, true
}
