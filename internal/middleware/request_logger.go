package middleware

import (
	"time"

	"github.com/damoang/angple-memo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDKey  = "request_id"
	requestLogKey = "request_logger"
)

// quietPaths are polled by infrastructure and only logged on failure
var quietPaths = map[string]bool{"/health": true, "/metrics": true}

// RequestLogger tags every request with an id, exposes a request-scoped
// logger through RequestLog and writes one access line when the request ends
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		reqLog := logger.WithRequestID(requestID)
		c.Set(requestIDKey, requestID)
		c.Set(requestLogKey, &reqLog)
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = reqLog.Error()
		case status >= 400:
			event = reqLog.Warn()
		case quietPaths[c.Request.URL.Path]:
			event = reqLog.Debug()
		default:
			event = reqLog.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("route", routeLabel(c)).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size())
		if id := GetIdentity(c); id != nil {
			event = event.Uint64("user_id", id.UserID).Str("auth_source", string(id.Source))
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}

// RequestLog returns the logger of the current request, or the global one
// outside of RequestLogger
func RequestLog(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(requestLogKey); ok {
		if l, ok := v.(*zerolog.Logger); ok {
			return l
		}
	}
	return logger.GetLogger()
}
