package cache

import (
	"context"
	"sync"
	"time"
)

type memoryCacheItem struct {
	value      string
	expiration time.Time
}

func (i memoryCacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// MemoryCache 进程内缓存，过期键在读取时惰性判断，由后台清理协程删除
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryCacheItem
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryCacheItem),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	item := memoryCacheItem{value: value}
	if expiration > 0 {
		item.expiration = m.now().Add(expiration)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || item.expired(m.now()) {
		return "", ErrKeyNotFound
	}
	return item.value, nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if err == ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// StartCleanup 启动后台协程定期删除过期键，Close 时退出
func (m *MemoryCache) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.purgeExpired()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *MemoryCache) purgeExpired() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, item := range m.items {
		if item.expired(now) {
			delete(m.items, key)
		}
	}
}

// Len 返回当前保存的键数量（包含尚未清理的过期键）
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryCache) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}
