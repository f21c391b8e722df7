package handler

import (
	"net/http"

	"github.com/finx/finx-pharma/internal/middleware"
	"github.com/finx/finx-pharma/internal/model"
	"github.com/finx/finx-pharma/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIHandler chat and health endpoints
type APIHandler struct {
	chatService    *service.ChatService
	sessionService *service.SessionService
	serviceName    string
	logger         *zap.Logger
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(chatService *service.ChatService, sessionService *service.SessionService, serviceName string, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		chatService:    chatService,
		sessionService: sessionService,
		serviceName:    serviceName,
		logger:         logger,
	}
}

// Chat POST /api/chat. Always 200: every outcome is an assistant reply.
func (h *APIHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("unreadable chat body",
			zap.String("requestId", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
		// no messages: the pipeline answers with its own fixed message
		req.Messages = nil
	}

	reply := h.chatService.Reply(c.Request.Context(), req.Messages)
	c.JSON(http.StatusOK, reply)
}

// Health GET /api/health
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "UP",
		"service":    h.serviceName,
		"backends":   h.chatService.Backends(),
		"wsSessions": h.sessionService.Count(),
	})
}
