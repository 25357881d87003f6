// Package ratelimit 按客户端标识做令牌桶限流
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter 是限流算法的接口
type Limiter interface {
	Allow(ctx context.Context, identifier string) bool
	Name() string
}

// IdentifierFunc 从请求中提取限流标识
type IdentifierFunc func(r *http.Request) string

// ClientIP 只使用连接的对端地址，请求头可以被客户端伪造
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedClientIP 优先使用 X-Forwarded-For 的第一个地址，其次 X-Real-Ip，最后 RemoteAddr。
// 只能部署在会改写这些头的反向代理之后
func ForwardedClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	return ClientIP(r)
}

// Identifier 根据是否信任代理头选择 IP 提取方式
func Identifier(trustProxyHeaders bool) IdentifierFunc {
	if trustProxyHeaders {
		return ForwardedClientIP
	}
	return ClientIP
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter 每个标识一个 rate.Limiter，长时间未访问的标识会被清理
type MemoryLimiter struct {
	name  string
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewMemoryLimiter(name string, rps float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		name:     name,
		limit:    rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, identifier string) bool {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[identifier] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

func (l *MemoryLimiter) Name() string {
	return l.name
}

// Cleanup 删除 idle 时间以上未访问的标识，返回删除数量
func (l *MemoryLimiter) Cleanup(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, id)
			removed++
		}
	}
	return removed
}

// RunCleanup 定期清理，ctx 结束时退出
func (l *MemoryLimiter) RunCleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup(idle)
		}
	}
}
