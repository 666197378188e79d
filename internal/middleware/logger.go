package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
)

const (
	RequestIDHeader  = "X-Request-ID"
	ContextRequestID = httperr.RequestIDKey
)

// RequestLogger registra cada requisição com um request id e alimenta as métricas HTTP.
func RequestLogger(log *logrus.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ContextRequestID, reqID)
		c.Header(RequestIDHeader, reqID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		m.ObserveHTTP(c.Request.Method, route, status, elapsed)

		entry := log.WithFields(logrus.Fields{
			"request_id":  reqID,
			"method":      c.Request.Method,
			"route":       route,
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
			"remote_ip":   c.ClientIP(),
		})
		if v, ok := c.Get(ContextStudioID); ok {
			entry = entry.WithField("studio_id", v)
		}

		switch {
		case status >= 500:
			entry.Error("request completed")
		case status >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// Recovery é a última barreira: loga o panic e devolve um corpo mínimo.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		reqID, _ := c.Get(ContextRequestID)
		log.WithFields(logrus.Fields{
			"request_id": reqID,
			"route":      c.FullPath(),
			"panic":      recovered,
		}).Error("panic recovered")

		httperr.Abort(c, http.StatusInternalServerError, "internal_error", "Algo deu errado. Tente novamente.")
	})
}
