// Package ws is the real-time gateway: it upgrades connections, resolves
// the caller's identity from its session token, and bridges the engine's
// event sinks onto websocket frames.
package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"sms-relay/auth"
	"sms-relay/runtime"
	"sms-relay/sink"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Server struct {
	Log        *slog.Logger
	Engine     *runtime.Engine
	Issuer     *auth.TokenIssuer
	BufferSize int
}

// Handle upgrades the request and runs the connection until it closes.
// The token travels in ?token= or in the Authorization header; the identity
// inside it is the only thing the engine ever learns about the caller.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	claims, err := s.Issuer.Validate(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	identity := claims.Username
	session := newSession(s.Log, s.Engine, conn, sink.NewSessionSink(s.Log, identity, s.BufferSize))
	s.Log.Info("ws connected", "user", identity, "session_id", session.sink.SessionID())

	// Every device of a user subscribes its personal topic on connect, so
	// direct traffic and sender echoes reach all of them. Direct history is
	// served over REST, so the personal topic attaches live-only.
	session.join(identity, nil)

	go session.writeLoop()
	session.readLoop()

	s.Engine.OnDisconnect(session.sink)
	s.Log.Info("ws disconnected", "user", identity, "session_id", session.sink.SessionID())
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 8 * 1024
)
