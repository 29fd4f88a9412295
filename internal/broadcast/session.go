package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pscheid92/syncvision/internal/adapter/metrics"
)

// maxFrameSize caps inbound frames at the same size as HTTP request bodies.
const maxFrameSize = 1 << 20

// State is the lifecycle state of one connection.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventConnected EventKind = iota
	EventMessage
	EventClosed
)

// Event is an input to the connection lifecycle. Message events carry the
// decoded envelope.
type Event struct {
	Kind     EventKind
	Envelope Envelope
}

type EffectKind int

const (
	EffectRegister EffectKind = iota
	EffectPublish
	EffectUnregister
)

// Effect is an action the session must perform against the relay.
type Effect struct {
	Kind    EffectKind
	Payload json.RawMessage
}

// Transition computes the next state and the effects to run. It has no side effects.
func Transition(state State, ev Event) (State, []Effect) {
	switch state {
	case StateConnecting:
		switch ev.Kind {
		case EventConnected:
			return StateConnected, []Effect{{Kind: EffectRegister}}
		case EventClosed:
			return StateDisconnected, nil
		}
	case StateConnected:
		switch ev.Kind {
		case EventMessage:
			if ev.Envelope.Event == EventTaskUpdated {
				return StateConnected, []Effect{{Kind: EffectPublish, Payload: ev.Envelope.Data}}
			}
		case EventClosed:
			return StateDisconnected, []Effect{{Kind: EffectUnregister}}
		}
	}
	return state, nil
}

// Membership is the part of the relay a session drives.
type Membership interface {
	Register(id string, conn *websocket.Conn)
	Unregister(id string)
	Publish(payload json.RawMessage)
}

// Session runs the read side of one websocket connection.
type Session struct {
	id         string
	connection *websocket.Conn
	relay      Membership
	metrics    *metrics.RelayMetrics
	logger     *slog.Logger
	state      State
}

func NewSession(conn *websocket.Conn, relay Membership, m *metrics.RelayMetrics, logger *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:         id,
		connection: conn,
		relay:      relay,
		metrics:    m,
		logger:     logger.With("connection_id", id),
		state:      StateConnecting,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

// Run registers the connection and processes inbound frames until the
// transport closes or ctx is cancelled. It always leaves the session
// Disconnected and unregistered.
func (s *Session) Run(ctx context.Context) {
	s.connection.SetReadLimit(maxFrameSize)

	stop := context.AfterFunc(ctx, func() { _ = s.connection.Close() })
	defer stop()

	s.apply(ctx, Event{Kind: EventConnected})
	defer s.apply(ctx, Event{Kind: EventClosed})

	for {
		messageType, frame, err := s.connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.logger.DebugContext(ctx, "websocket read ended", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		// Peers only ever receive valid UTF-8.
		if !utf8.Valid(frame) {
			s.logger.DebugContext(ctx, "dropping non-UTF-8 frame", "size", len(frame))
			continue
		}

		env, err := DecodeEnvelope(frame)
		if err != nil {
			s.logger.DebugContext(ctx, "dropping malformed frame", "error", err, "size", len(frame))
			continue
		}
		s.apply(ctx, Event{Kind: EventMessage, Envelope: env})
	}
}

func (s *Session) apply(ctx context.Context, ev Event) {
	next, effects := Transition(s.state, ev)
	s.state = next

	for _, effect := range effects {
		switch effect.Kind {
		case EffectRegister:
			s.relay.Register(s.id, s.connection)
		case EffectPublish:
			s.metrics.EventsReceived.Inc()
			s.logger.DebugContext(ctx, "event received", "event", EventTaskUpdated, "data", string(effect.Payload))
			s.relay.Publish(effect.Payload)
		case EffectUnregister:
			s.relay.Unregister(s.id)
		}
	}
}
