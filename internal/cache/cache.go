package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the key/value store backing short-lived server state, primarily
// signed download tokens. Redis when configured, in-memory otherwise.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// DownloadTokenKey builds the cache key for a signed download token.
func DownloadTokenKey(token string) string {
	return "download-token:" + token
}
