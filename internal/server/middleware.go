package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/ginx"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with a trace id and logs its outcome.
func RequestLogger(log logger.Logger, tenantID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(requestIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(requestIDHeader, traceID)

		ctx := logger.WithTenantID(logger.WithTraceID(c.Request.Context(), traceID), tenantID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		log.Infof(ctx, "[API] %s %s -> %d (%v)",
			c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// ErrorHandler turns errors attached to the context into a 500 envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.InternalError(c, c.Errors.Last().Error())
		}
	}
}
