package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"salesconvert.example/sales-convert/pkg/logger"
)

// Pinger 依赖项的连通性检查，*sql.DB 满足该接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	service string
	checks  map[string]Pinger
	log     logger.Logger
}

// NewHealthHandler checks 为空时只报告进程存活
func NewHealthHandler(service string, checks map[string]Pinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{service: service, checks: checks, log: log}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			h.log.Warn(ctx, "health check failed", "dependency", name, "error", err)
			deps[name] = "down"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	response := map[string]interface{}{
		"status":       status,
		"service":      h.service,
		"dependencies": deps,
		"time":         time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error(ctx, "failed to write health response", "error", err)
	}
}
