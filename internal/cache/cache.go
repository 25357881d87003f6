package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyNotFound = errors.New("key not found")
)

// Cache 会话存储使用的键值缓存接口
type Cache interface {
	// Set 设置键值对，expiration 为 0 表示不过期
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Get 键不存在或已过期时返回 ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
