package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/logging"
	"github.com/solutyics/loanform/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Message types sent by the page
const (
	MessageChange = "change"
	MessageBlur   = "blur"
	MessageSubmit = "submit"
)

// clientMessage is one field event from the browser
type clientMessage struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// serverMessage carries a state snapshot to the browser
type serverMessage struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId"`
	State     form.Snapshot `json:"state"`
}

// event converts a message to a form event. Unknown types and fields are
// rejected.
func (m clientMessage) event() (form.Event, bool) {
	switch m.Type {
	case MessageSubmit:
		return form.Submit{}, true
	case MessageChange, MessageBlur:
		f, ok := form.ParseField(m.Field)
		if !ok {
			return nil, false
		}
		if m.Type == MessageChange {
			return form.Change{Field: f, Value: m.Value}, true
		}
		return form.Blur{Field: f}, true
	}
	return nil, false
}

// handleWebSocket runs one form session for the lifetime of the connection.
// Every state change, including the one produced when a prediction settles,
// is pushed to the page as a snapshot.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", c.ClientIP()),
			zap.Error(err),
		)
		return
	}

	s.sessions.Add(1)
	ActiveSessions.Inc()
	defer func() {
		ActiveSessions.Dec()
		s.sessions.Done()
	}()

	// The session outlives the HTTP request context, so requests it starts
	// are bounded by this connection instead.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sess *session.Session
	sess = session.New("web", s.predictor, func(st form.State) {
		s.writeSnapshot(conn, sess.ID, st)
	})

	s.trackConn(conn, true)
	defer func() {
		s.trackConn(conn, false)
		cancel()
		sess.Close()
		_ = conn.Close()
	}()

	stopPing := make(chan struct{})
	defer close(stopPing)
	go s.pingLoop(conn, stopPing)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.writeSnapshot(conn, sess.ID, sess.State())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("WebSocket closed unexpectedly", zap.String("session_id", sess.ID), zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Debug("Ignoring malformed message", zap.String("session_id", sess.ID), zap.Error(err))
			continue
		}
		ev, ok := msg.event()
		if !ok {
			logging.Debug("Ignoring unknown message",
				zap.String("session_id", sess.ID),
				zap.String("type", msg.Type),
				zap.String("field", msg.Field),
			)
			continue
		}

		wasLoading := sess.State().Loading
		st := sess.Dispatch(ctx, ev)
		if _, isSubmit := ev.(form.Submit); isSubmit && !wasLoading {
			recordSubmission("web", st.Loading)
		}
	}
}

// writeSnapshot is called once before the read loop starts and afterwards
// only from the session observer, which the session serialises, so data
// writes never overlap. Pings and close frames use WriteControl, which gorilla
// allows concurrently.
func (s *Server) writeSnapshot(conn *websocket.Conn, sessionID string, st form.State) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteJSON(serverMessage{
		Type:      "state",
		SessionID: sessionID,
		State:     st.Snapshot(),
	})
	if err != nil {
		logging.Debug("Failed to send state", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *Server) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) trackConn(conn *websocket.Conn, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		if s.conns == nil {
			s.conns = make(map[*websocket.Conn]struct{})
		}
		s.conns[conn] = struct{}{}
		return
	}
	delete(s.conns, conn)
}

// closeConns asks every open page to go away
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

// checkOrigin accepts same-origin pages and any configured origin
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	return false
}
