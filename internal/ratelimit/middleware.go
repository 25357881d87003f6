package ratelimit

import (
	"net/http"

	"salesconvert.example/sales-convert/pkg/logger"
)

// Middleware 创建限流中间件，被拒绝的请求返回 429
func Middleware(lim Limiter, identify IdentifierFunc, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := identify(r)
			if id == "" {
				// 无法识别的请求直接放行
				next.ServeHTTP(w, r)
				return
			}

			if !lim.Allow(r.Context(), id) {
				log.Warn(r.Context(), "request rate limited", "limiter", lim.Name(), "identifier", id)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
