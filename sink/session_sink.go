// Package sink provides the buffered per-connection event sinks that the
// fan-out pushes into and transports drain.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sms-relay/domain/event"
	"sms-relay/errors"
)

// SessionSink buffers events for one live connection. Consume never blocks
// the fan-out: a full buffer loses the event for this session only.
//
// It also owns the backlog cursors that split history from live delivery.
// Between BeginJoin and CompleteJoin events for the joining topic are held
// aside; CompleteJoin replays them through the cursor filter. This closes
// the race where a commit lands after the subscription but before the
// cursor is known.
type SessionSink struct {
	id       string
	identity string
	log      *slog.Logger

	Events chan event.DomainEvent

	mu      sync.Mutex
	cursors map[string]time.Time
	pending map[string][]event.DomainEvent
}

func NewSessionSink(log *slog.Logger, identity string, bufferSize int) *SessionSink {
	return &SessionSink{
		id:       uuid.NewString(),
		identity: identity,
		log:      log,
		Events:   make(chan event.DomainEvent, bufferSize),
		cursors:  make(map[string]time.Time),
		pending:  make(map[string][]event.DomainEvent),
	}
}

func (s *SessionSink) SessionID() string { return s.id }
func (s *SessionSink) Identity() string  { return s.identity }

// BeginJoin starts holding events for a topic until its cursor is known.
func (s *SessionSink) BeginJoin(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[topic] = []event.DomainEvent{}
}

// CompleteJoin records the backlog cursor for a topic and replays the held
// events through the filter. Anything at or before the cursor is already
// part of the caller's history read and is discarded.
func (s *SessionSink) CompleteJoin(topic string, cursor time.Time) {
	s.mu.Lock()
	held := s.pending[topic]
	delete(s.pending, topic)
	s.cursors[topic] = cursor
	s.mu.Unlock()

	for _, e := range held {
		if s.admits(topic, e) {
			s.enqueue(e)
		}
	}
}

// ForgetTopic drops the cursor state for a topic, typically on leave.
func (s *SessionSink) ForgetTopic(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, topic)
	delete(s.pending, topic)
}

// Consume is called by the fan-out. It redirects the event through the
// owner's channel; the transport drains it from there.
func (s *SessionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	if held, joining := s.pending[e.Topic()]; joining {
		if _, durable := e.(event.MessageCommitted); durable {
			s.pending[e.Topic()] = append(held, e)
			s.mu.Unlock()
			return nil
		}
	}
	s.mu.Unlock()

	if !s.admits(e.Topic(), e) {
		// Already covered by the backlog read for this topic.
		return nil
	}
	if !s.enqueue(e) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return errors.ErrSlowConsumer
		}
	}
	return nil
}

// admits applies the cursor filter: committed messages at or before the
// topic's join cursor were delivered as backlog and must not repeat.
// Ephemeral events always pass.
func (s *SessionSink) admits(topic string, e event.DomainEvent) bool {
	committed, ok := e.(event.MessageCommitted)
	if !ok {
		return true
	}
	s.mu.Lock()
	cursor, known := s.cursors[topic]
	s.mu.Unlock()
	if !known {
		return true
	}
	return committed.Message.CreatedAt.After(cursor)
}

func (s *SessionSink) enqueue(e event.DomainEvent) bool {
	select {
	case s.Events <- e:
		return true
	default:
		s.log.Debug("session buffer full, event lost", "session_id", s.id)
		return false
	}
}
