package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContextKeyLogger is the gin context key holding the request logger.
const ContextKeyLogger = "logger"

// Logger attaches a request-scoped logger carrying the request id and logs
// each HTTP request with method, path, status, and latency.
func Logger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqLog := base.With().Str("request_id", GetRequestID(c)).Logger()
		c.Set(ContextKeyLogger, reqLog)
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			evt = reqLog.Error()
		case status >= http.StatusBadRequest:
			evt = reqLog.Warn()
		default:
			evt = reqLog.Info()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// LoggerFrom returns the request logger, or a disabled logger outside a
// request that went through Logger.
func LoggerFrom(c *gin.Context) zerolog.Logger {
	if v, ok := c.Get(ContextKeyLogger); ok {
		if l, ok := v.(zerolog.Logger); ok {
			return l
		}
	}
	return zerolog.Nop()
}

// Recovery recovers from panics, logs them, and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log := LoggerFrom(c)
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
