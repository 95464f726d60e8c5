package monitor

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware 请求日志中间件
type LoggingMiddleware struct {
	log *zap.SugaredLogger
}

// NewLoggingMiddleware 创建日志中间件
func NewLoggingMiddleware(log *zap.SugaredLogger) *LoggingMiddleware {
	return &LoggingMiddleware{log: log}
}

// Middleware 日志中间件
func (lm *LoggingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		lm.log.Debugw("HTTP请求",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseRecorder 响应记录器
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader 记录状态码
func (rr *responseRecorder) WriteHeader(code int) {
	rr.statusCode = code
	rr.ResponseWriter.WriteHeader(code)
}
