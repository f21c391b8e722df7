package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sessionWriteWait = 10 * time.Second

// Session one live WebSocket connection. Writes are serialized.
type Session struct {
	ID          string
	ClientIP    string
	ConnectedAt time.Time

	conn *websocket.Conn
	mu   sync.Mutex
}

// WriteJSON sends v as one text frame.
func (s *Session) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
	return s.conn.WriteJSON(v)
}

// Ping sends a ping control frame.
func (s *Session) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(sessionWriteWait))
}

// Close sends a close frame with code and closes the connection.
func (s *Session) Close(code int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(sessionWriteWait))
	return s.conn.Close()
}

// SessionService registry of live WebSocket sessions
type SessionService struct {
	sessions map[string]*Session // sessionId -> session
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewSessionService creates an empty registry.
func NewSessionService(logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Register tracks conn under a new session id.
func (s *SessionService) Register(conn *websocket.Conn, clientIP string) *Session {
	session := &Session{
		ID:          uuid.New().String(),
		ClientIP:    clientIP,
		ConnectedAt: time.Now(),
		conn:        conn,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("websocket session registered",
		zap.String("sessionId", session.ID),
		zap.String("clientIp", clientIP))
	return session
}

// Remove forgets the session; the connection is left to its owner.
func (s *SessionService) Remove(sessionID string) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok {
		s.logger.Info("websocket session removed",
			zap.String("sessionId", sessionID),
			zap.Duration("duration", time.Since(session.ConnectedAt)))
	}
}

// Count number of live sessions
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll closes every live session with a going-away frame. Used on shutdown,
// since hijacked connections are not closed by http.Server.Shutdown.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for id, session := range s.sessions {
		sessions = append(sessions, session)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		if err := session.Close(websocket.CloseGoingAway, "server shutting down"); err != nil {
			s.logger.Debug("close session failed", zap.String("sessionId", session.ID), zap.Error(err))
		}
	}
	if len(sessions) > 0 {
		s.logger.Info("websocket sessions closed", zap.Int("count", len(sessions)))
	}
}
