package shared

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RequestIDMiddleware assigns each request a uuid, echoed in X-Request-ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request-id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// MetricsMiddleware records request counts and durations.
func MetricsMiddleware(metrics *AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// RequestLoggingMiddleware writes one trace-correlated line per request.
func RequestLoggingMiddleware(logger *otelzap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Ctx(c.Request.Context()).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString("request-id")),
			zap.String("trace_id", GetTraceID(c.Request.Context())),
			zap.String("ip", GetClientIP(c)),
		)
	}
}

// SetupGinMiddleware attaches the full ambient chain: tracing, request ids,
// metrics, logging and rate limiting, in that order.
func SetupGinMiddleware(router *gin.Engine, serviceName string, metrics *AppMetrics, logger *otelzap.Logger) {
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RequestIDMiddleware())

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	if logger != nil {
		router.Use(RequestLoggingMiddleware(logger))
		rateLimiter := NewRateLimiter(logger.Logger, metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}
}
