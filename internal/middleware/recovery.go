package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 200 response carrying body, keeping the in-band error contract.
func Recovery(logger *zap.Logger, body interface{}) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("requestId", c.GetString(RequestIDKey)))
		c.AbortWithStatusJSON(http.StatusOK, body)
	})
}
