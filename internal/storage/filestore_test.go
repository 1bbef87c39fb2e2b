package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"care-portal-server/internal/cache"
)

func newTestStore(t *testing.T, ttl time.Duration) *FileStore {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { mc.Close() })

	fs, err := NewFileStore(t.TempDir(), mc, ttl)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return fs
}

func TestFileStore_SaveAndOpen(t *testing.T) {
	fs := newTestStore(t, time.Hour)

	n, err := fs.Save("owner-1", "doc-1", "report.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if n != int64(len("pdf-bytes")) {
		t.Fatalf("wrote %d bytes, want %d", n, len("pdf-bytes"))
	}

	r, err := fs.Open("owner-1", "doc-1", "report.pdf")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer r.Close()

	data, _ := io.ReadAll(r)
	if string(data) != "pdf-bytes" {
		t.Fatalf("got %q", data)
	}
}

func TestFileStore_OpenMissing(t *testing.T) {
	fs := newTestStore(t, time.Hour)
	if _, err := fs.Open("o", "d", "nope.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestFileStore_PathTraversalFlattened(t *testing.T) {
	fs := newTestStore(t, time.Hour)

	if _, err := fs.Save("owner-1", "doc-1", "../../evil.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// the base name must resolve inside the document directory
	if _, err := fs.Open("owner-1", "doc-1", "evil.txt"); err != nil {
		t.Fatalf("expected flattened file inside document dir: %v", err)
	}
}

func TestFileStore_TokenRoundTrip(t *testing.T) {
	fs := newTestStore(t, time.Hour)
	ctx := context.Background()

	if _, err := fs.Save("owner-1", "doc-1", "scan.png", strings.NewReader("img")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	token, expires, err := fs.IssueToken(ctx, "owner-1", "doc-1", "scan.png", "image/png")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if !expires.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	r, name, contentType, err := fs.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	defer r.Close()
	if name != "scan.png" || contentType != "image/png" {
		t.Fatalf("got %q/%q", name, contentType)
	}
}

func TestFileStore_ExpiredTokenRejected(t *testing.T) {
	fs := newTestStore(t, -time.Second)
	ctx := context.Background()

	token, _, err := fs.IssueToken(ctx, "o", "d", "f.txt", "text/plain")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, _, _, err := fs.Resolve(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestFileStore_RemoveDeletesContents(t *testing.T) {
	fs := newTestStore(t, time.Hour)

	if _, err := fs.Save("owner-1", "doc-1", "a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := fs.Remove("owner-1", "doc-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := fs.Open("owner-1", "doc-1", "a.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound after remove, got %v", err)
	}
}
