package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/bravo68web/shipyard/pkg/logger"
)

const requestIDKey = "request_id"

// LoggerConfig holds configuration for the logging middleware
type LoggerConfig struct {
	// Logger is the logger instance to use
	Logger *logger.Logger

	// SkipPaths are paths that should not be logged
	SkipPaths []string

	// SkipPathPrefixes are path prefixes that should not be logged
	SkipPathPrefixes []string

	// RequestIDHeader is the header name for request ID
	RequestIDHeader string
}

// DefaultLoggerConfig returns a default middleware configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		SkipPaths:       []string{"/health", "/metrics"},
		RequestIDHeader: "X-Request-ID",
	}
}

// LoggerMiddleware returns a Gin middleware for logging HTTP requests
func LoggerMiddleware() gin.HandlerFunc {
	return LoggerMiddlewareWithConfig(DefaultLoggerConfig())
}

// LoggerMiddlewareWithConfig assigns every request an id and logs it once it completes
func LoggerMiddlewareWithConfig(cfg *LoggerConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = "X-Request-ID"
	}

	skipPaths := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(cfg.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(cfg.RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		path := c.Request.URL.Path
		if skipped(path, skipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []logger.Field{
			logger.RequestID(requestID),
			logger.Method(c.Request.Method),
			logger.Path(path),
			logger.Query(c.Request.URL.RawQuery),
			logger.StatusCode(status),
			logger.Latency(latency),
			logger.ClientIP(c.ClientIP()),
			logger.UserAgent(c.Request.UserAgent()),
			logger.BodySize(c.Writer.Size()),
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				logger.TraceID(span.SpanContext().TraceID().String()),
				logger.SpanID(span.SpanContext().SpanID().String()),
			)
		}
		if user := GetUserFromContext(c); user != nil {
			fields = append(fields, logger.UserID(user.ID.String()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logger.Strings("errors", c.Errors.Errors()))
		}

		msg := "HTTP Request"
		switch {
		case status >= 500:
			log.Error(msg, fields...)
		case status >= 400:
			log.Warn(msg, fields...)
		default:
			log.Info(msg, fields...)
		}
	}
}

func skipped(path string, exact map[string]struct{}, prefixes []string) bool {
	if _, ok := exact[path]; ok {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// GetRequestID retrieves the request ID from the gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
