package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

const slowRequest = 2 * time.Second

// RequestLogger writes one access line per request. Health checks and successful live
// connections go to debug; anything slower than slowRequest is promoted to warn.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched:" + c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := accessFields(c, route, status, elapsed)

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		case isLongLived(route) || route == "/healthcheck":
			log.Debug("request served", fields...)
		case elapsed > slowRequest:
			log.Warn("slow request", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}

func accessFields(c *gin.Context, route string, status int, elapsed time.Duration) []interface{} {
	fields := []interface{}{
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
		"bytes", c.Writer.Size(),
		"client_ip", c.ClientIP(),
	}
	ctx := c.Request.Context()
	if td := ctxutil.GetTraceData(ctx); td != nil && td.TraceID != "" {
		fields = append(fields, "trace_id", td.TraceID)
	}
	if id := ctxutil.RequestID(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		fields = append(fields, "user_id", rd.UserID.String())
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		fields = append(fields, "idempotent", true)
	}
	if last := c.Errors.Last(); last != nil {
		fields = append(fields, "error", last.Error())
	}
	return fields
}
