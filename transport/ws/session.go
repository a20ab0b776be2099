package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"sms-relay/domain"
	"sms-relay/domain/event"
	"sms-relay/runtime"
	"sms-relay/sink"
)

// frame is the uniform wire envelope, both directions.
type frame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type sendMessagePayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendGroupMessagePayload struct {
	GroupID string `json:"groupId"`
	Text    string `json:"text"`
}

type groupPayload struct {
	GroupID string `json:"groupId"`
}

type typingPayload struct {
	To       string `json:"to,omitempty"`
	GroupID  string `json:"groupId,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

type historyPayload struct {
	GroupID  string           `json:"groupId"`
	Messages []domain.Message `json:"messages"`
}

type typingNotice struct {
	From     string `json:"from"`
	GroupID  string `json:"groupId,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// session glues one websocket connection to its engine-side sink.
// The read loop turns frames into engine calls; the write loop drains the
// sink and the outbound queue onto the wire.
type session struct {
	log    *slog.Logger
	engine *runtime.Engine
	conn   *websocket.Conn
	sink   *sink.SessionSink

	// outbound carries transport-local frames (history batches, errors)
	// that never pass through the engine.
	outbound chan frame
}

func newSession(log *slog.Logger, engine *runtime.Engine, conn *websocket.Conn, s *sink.SessionSink) *session {
	return &session{
		log:      log,
		engine:   engine,
		conn:     conn,
		sink:     s,
		outbound: make(chan frame, 16),
	}
}

// join subscribes this session to a topic and, when given a conversation,
// replays its backlog up to the join cursor before any live event for that
// topic is let through. Backlog and live delivery never overlap. A nil
// conversation means live-only, which is how personal topics attach.
func (s *session) join(topic string, backlog domain.Conversation) {
	s.sink.BeginJoin(topic)
	cursor := s.engine.Join(topic, s.sink)

	if backlog != nil {
		messages, err := s.engine.History(backlog, domain.Window{Until: &cursor})
		if err != nil {
			s.log.Error("backlog read failed", "topic", topic, "error", err)
		} else {
			s.send("history", historyPayload{GroupID: topic, Messages: messages})
		}
	}
	s.sink.CompleteJoin(topic, cursor)
}

func (s *session) readLoop() {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxFrameSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("ws read error", "user", s.sink.Identity(), "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.sendError("malformed frame")
			continue
		}
		s.handle(f)
	}
}

func (s *session) handle(f frame) {
	ctx := context.Background()
	me := s.sink.Identity()

	switch f.Action {
	case "send-message":
		var p sendMessagePayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			s.sendError("malformed frame")
			return
		}
		// The ack reaches this session as its own echo on the personal topic.
		if _, err := s.engine.SubmitDirect(ctx, me, p.To, p.Message); err != nil {
			s.sendError(err.Error())
		}

	case "send-group-message":
		var p sendGroupMessagePayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			s.sendError("malformed frame")
			return
		}
		if _, err := s.engine.SubmitGroup(ctx, p.GroupID, me, p.Text); err != nil {
			s.sendError(err.Error())
		}

	case "join-group":
		var p groupPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			s.sendError("malformed frame")
			return
		}
		s.join(p.GroupID, domain.GroupConversation{GroupID: p.GroupID})

	case "leave-group":
		var p groupPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			s.sendError("malformed frame")
			return
		}
		s.engine.Leave(p.GroupID, s.sink)
		s.sink.ForgetTopic(p.GroupID)

	case "typing":
		var p typingPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return
		}
		topic := p.To
		if p.GroupID != "" {
			topic = p.GroupID
		}
		s.engine.Signal(ctx, event.Typing{
			DeliveryTopic: topic,
			From:          me,
			GroupID:       p.GroupID,
			IsTyping:      p.IsTyping,
			At:            time.Now().UTC(),
		})

	default:
		s.sendError("unknown action")
	}
}

func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case evt, okCh := <-s.sink.Events:
			if !okCh {
				return
			}
			if !s.write(s.frameFor(evt)) {
				return
			}
		case f := <-s.outbound:
			if !s.write(f) {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// frameFor maps engine events to wire actions. A direct message delivered
// under the sender's own topic is the device-sync echo, not new traffic.
func (s *session) frameFor(evt event.DomainEvent) frame {
	switch e := evt.(type) {
	case event.MessageCommitted:
		action := "new-message"
		if e.Message.Kind == domain.KindGroup {
			action = "new-group-message"
		} else if e.DeliveryTopic == e.Message.From {
			action = "message-sent"
		}
		data, err := json.Marshal(e.Message)
		if err != nil {
			s.log.Error("event payload marshal failed", "action", action, "error", err)
		}
		return frame{Action: action, Data: data}

	case event.Typing:
		action := "user-typing"
		if e.GroupID != "" {
			action = "user-group-typing"
		}
		data, err := json.Marshal(typingNotice{From: e.From, GroupID: e.GroupID, IsTyping: e.IsTyping})
		if err != nil {
			s.log.Error("event payload marshal failed", "action", action, "error", err)
		}
		return frame{Action: action, Data: data}

	default:
		return frame{Action: "event"}
	}
}

func (s *session) write(f frame) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	data, err := json.Marshal(f)
	if err != nil {
		s.log.Error("frame marshal failed", "action", f.Action, "error", err)
		return true
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Warn("ws write error", "user", s.sink.Identity(), "error", err)
		return false
	}
	return true
}

func (s *session) send(action string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("payload marshal failed", "action", action, "error", err)
		return
	}
	select {
	case s.outbound <- frame{Action: action, Data: data}:
	default:
		s.log.Debug("outbound queue full, frame lost", "action", action)
	}
}

func (s *session) sendError(msg string) {
	s.send("message-error", map[string]string{"error": msg})
}
