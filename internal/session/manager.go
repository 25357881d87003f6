package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"salesconvert.example/sales-convert/internal/cache"
	"salesconvert.example/sales-convert/pkg/jwt"
)

const keyPrefix = "session:"

// Manager 负责会话的加载、保存和销毁。cookie 中只有签名的会话 ID，状态保存在 cache 中
type Manager struct {
	store      cache.Cache
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewManager(store cache.Cache, secret, cookieName string, ttl time.Duration, secure bool) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store cannot be nil")
	}
	if secret == "" {
		return nil, errors.New("session: secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	if cookieName == "" {
		cookieName = "salesconvert_session"
	}
	return &Manager{
		store:      store,
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}, nil
}

// Load 读取请求对应的会话；cookie 缺失、无效或会话已过期时返回一个新的匿名会话
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return m.newSession(), nil
	}

	claims, err := jwt.ValidateToken(cookie.Value, m.secret)
	if err != nil {
		return m.newSession(), nil
	}

	raw, err := m.store.Get(r.Context(), keyPrefix+claims.SessionID)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return m.newSession(), nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return m.newSession(), nil
	}
	s.ID = claims.SessionID
	return &s, nil
}

// Save 保存会话并刷新 cookie 和过期时间
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyPrefix+s.ID, string(raw), m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	token, err := jwt.GenerateToken(s.ID, m.secret, m.ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Rotate 登录时更换会话 ID，旧 ID 立即失效
func (m *Manager) Rotate(ctx context.Context, s *Session) error {
	if err := m.store.Delete(ctx, keyPrefix+s.ID); err != nil {
		return err
	}
	s.ID = uuid.NewString()
	return nil
}

// Destroy 删除会话并让浏览器清除 cookie
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Delete(ctx, keyPrefix+s.ID); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) newSession() *Session {
	return &Session{ID: uuid.NewString()}
}
