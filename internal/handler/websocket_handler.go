package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/finx/finx-pharma/internal/model"
	"github.com/finx/finx-pharma/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 1 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the chat client origins once they are fixed in config
		return true
	},
}

// WebSocketHandler same request/response contract as POST /api/chat, one reply per frame
type WebSocketHandler struct {
	sessionService *service.SessionService
	chatService    *service.ChatService
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewWebSocketHandler creates the WebSocket handler.
func NewWebSocketHandler(sessionService *service.SessionService, chatService *service.ChatService, requestTimeout time.Duration, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		sessionService: sessionService,
		chatService:    chatService,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// HandleWebSocket GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := h.sessionService.Register(conn, c.ClientIP())
	defer h.sessionService.Remove(session.ID)

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// the upgraded connection outlives the gin request context deadline
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.keepAlive(ctx, session)

	// message loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("sessionId", session.ID), zap.Error(err))
			}
			break
		}

		reply := h.handleFrame(ctx, data)
		if err := session.WriteJSON(reply); err != nil {
			h.logger.Warn("websocket write failed", zap.String("sessionId", session.ID), zap.Error(err))
			break
		}
	}
}

func (h *WebSocketHandler) handleFrame(parent context.Context, data []byte) model.Reply {
	ctx := parent
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, h.requestTimeout)
		defer cancel()
	}

	var req model.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		req.Messages = nil
	}
	return h.chatService.Reply(ctx, req.Messages)
}

func (h *WebSocketHandler) keepAlive(ctx context.Context, session *service.Session) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := session.Ping(); err != nil {
				h.logger.Debug("websocket ping failed", zap.String("sessionId", session.ID), zap.Error(err))
				return
			}
		}
	}
}
