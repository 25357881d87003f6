package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusRecorder 记录响应状态码
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Status 未显式写状态码时为 200
func (w *statusRecorder) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

// Middleware 为每个请求注入 request_id/trace_id 并记录耗时和状态码
func Middleware(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-Id")
			if traceID == "" {
				traceID = uuid.NewString()
			}
			requestID := uuid.NewString()

			ctx := WithTraceID(r.Context(), traceID)
			ctx = WithRequestID(ctx, requestID)
			ctx = WithCustomFields(ctx, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-Id", requestID)
			rec := &statusRecorder{ResponseWriter: w}

			start := time.Now()
			next.ServeHTTP(rec, r)

			log.Info(ctx, "request completed",
				"remote", r.RemoteAddr,
				"status_code", rec.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
