package handler

import (
	"net/http"
	"strings"

	"github.com/finx/finx-pharma/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClassifierHandler exposes routing decisions without calling any backend.
type ClassifierHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

// NewClassifierHandler creates the classifier handler.
func NewClassifierHandler(chatService *service.ChatService, logger *zap.Logger) *ClassifierHandler {
	return &ClassifierHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Classify GET /api/classify?q=
func (h *ClassifierHandler) Classify(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	classification, namespace := h.chatService.Route(query)
	c.JSON(http.StatusOK, gin.H{
		"classification":   classification,
		"namespace":        namespace,
		"defaultNamespace": h.chatService.DefaultNamespace(),
	})
}
