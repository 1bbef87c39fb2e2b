// Package storage holds document file contents on disk, keyed by the
// {ownerId}/{documentId}/{fileName} convention, and issues short-lived signed
// download tokens backed by the cache.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"care-portal-server/internal/cache"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidToken = errors.New("download token is invalid or expired")
)

// FileStore saves and serves document files.
type FileStore struct {
	root   string
	tokens cache.Cache
	ttl    time.Duration
}

// NewFileStore creates a FileStore rooted at dir. Tokens live in the given
// cache with the configured TTL (1 hour by default).
func NewFileStore(dir string, tokens cache.Cache, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FileStore{root: dir, tokens: tokens, ttl: ttl}, nil
}

// objectPath builds the on-disk path for a document file. The file name is
// flattened to its base to keep path traversal out of the tree.
func (fs *FileStore) objectPath(ownerID, documentID, fileName string) string {
	return filepath.Join(fs.root, ownerID, documentID, filepath.Base(fileName))
}

// Save streams an uploaded file into place.
func (fs *FileStore) Save(ownerID, documentID, fileName string, r io.Reader) (int64, error) {
	path := fs.objectPath(ownerID, documentID, fileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create document directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

// Open returns a reader over the stored file.
func (fs *FileStore) Open(ownerID, documentID, fileName string) (io.ReadCloser, error) {
	f, err := os.Open(fs.objectPath(ownerID, documentID, fileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Remove deletes the document's directory and everything in it.
func (fs *FileStore) Remove(ownerID, documentID string) error {
	return os.RemoveAll(filepath.Join(fs.root, ownerID, documentID))
}

// tokenPayload is what a signed token resolves to.
type tokenPayload struct {
	OwnerID    string `json:"ownerId"`
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
}

// IssueToken mints a single-purpose download token for the document. The
// token is opaque and expires with the cache entry.
func (fs *FileStore) IssueToken(ctx context.Context, ownerID, documentID, fileName, fileType string) (string, time.Time, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	payload, err := json.Marshal(tokenPayload{
		OwnerID:    ownerID,
		DocumentID: documentID,
		FileName:   fileName,
		FileType:   fileType,
	})
	if err != nil {
		return "", time.Time{}, err
	}

	if err := fs.tokens.Set(ctx, cache.DownloadTokenKey(token), payload, fs.ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store token: %w", err)
	}
	return token, time.Now().Add(fs.ttl), nil
}

// Resolve validates a download token and opens the file it points to.
func (fs *FileStore) Resolve(ctx context.Context, token string) (io.ReadCloser, string, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "", "", ErrInvalidToken
	}

	raw, err := fs.tokens.Get(ctx, cache.DownloadTokenKey(token))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, "", "", ErrInvalidToken
	}
	if err != nil {
		return nil, "", "", err
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, "", "", ErrInvalidToken
	}

	f, err := fs.Open(payload.OwnerID, payload.DocumentID, payload.FileName)
	if err != nil {
		return nil, "", "", err
	}
	return f, payload.FileName, payload.FileType, nil
}
