package dashboard

import (
	"net/http"

	"github.com/gorilla/mux"

	"salesconvert.example/sales-convert/internal/health"
	"salesconvert.example/sales-convert/internal/metrics"
	"salesconvert.example/sales-convert/internal/ratelimit"
	"salesconvert.example/sales-convert/pkg/logger"
)

// RouterOptions 路由依赖；AuthLimiter 为 nil 时不限流。
// TrustProxyHeaders 为 true 时按 X-Forwarded-For 限流，只应在可信反向代理之后开启
type RouterOptions struct {
	Handler           *Handler
	Health            *health.HealthHandler
	Metrics           *metrics.Metrics
	AuthLimiter       ratelimit.Limiter
	TrustProxyHeaders bool
	Log               logger.Logger
}

// NewRouter 注册 dashboard 的全部路由
func NewRouter(opts RouterOptions) http.Handler {
	h := opts.Handler
	r := mux.NewRouter()
	r.Use(logger.Middleware(opts.Log))
	r.Use(opts.Metrics.Middleware)

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/nav", h.Navigate).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/sales", h.AddSales).Methods(http.MethodPost)
	r.HandleFunc("/api/analytics", h.AnalyticsAPI).Methods(http.MethodGet)
	r.HandleFunc("/export.csv", h.ExportCSV).Methods(http.MethodGet)
	r.HandleFunc("/healthz", opts.Health.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)

	// 登录和注册单独限流，防止暴力破解
	limit := func(next http.Handler) http.Handler { return next }
	if opts.AuthLimiter != nil {
		limit = ratelimit.Middleware(opts.AuthLimiter, ratelimit.Identifier(opts.TrustProxyHeaders), opts.Log)
	}
	r.Handle("/login", limit(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	r.Handle("/register", limit(http.HandlerFunc(h.Register))).Methods(http.MethodPost)

	return r
}
