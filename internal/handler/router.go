package handler

import (
	"time"

	"github.com/finx/finx-pharma/internal/middleware"
	"github.com/finx/finx-pharma/internal/model"
	"github.com/finx/finx-pharma/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes for the chat service.
func NewRouter(chatService *service.ChatService, sessionService *service.SessionService, serviceName string, requestTimeout time.Duration, logger *zap.Logger) *gin.Engine {
	apiHandler := NewAPIHandler(chatService, sessionService, serviceName, logger)
	classifierHandler := NewClassifierHandler(chatService, logger)
	wsHandler := NewWebSocketHandler(sessionService, chatService, requestTimeout, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.Recovery(logger, model.BuildReply(service.MsgGenericFailure)))
	r.Use(middleware.CORS())

	api := r.Group("/api")
	api.POST("/chat", middleware.Timeout(requestTimeout), apiHandler.Chat)
	api.GET("/classify", classifierHandler.Classify)
	api.GET("/health", apiHandler.Health)

	r.GET("/ws", wsHandler.HandleWebSocket)

	return r
}
