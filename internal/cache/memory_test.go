package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, DownloadTokenKey("abc"), []byte("doc-1"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := mc.Get(ctx, DownloadTokenKey("abc"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "doc-1" {
		t.Fatalf("got %q, want doc-1", val)
	}
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if _, err := mc.Get(ctx, "nope"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := mc.Set(ctx, "short", []byte("x"), -time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := mc.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", []byte("v"), time.Minute)
	if err := mc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}
