// Package docstore abstracts raw document storage. The ingestion pipeline
// persists URI references inside meeting records, never binary content, so
// the store only needs to accept bytes and hand back a stable URI.
package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes fetched documents and returns stable URIs for them.
type Store interface {
	// Put stores data under key and returns the URI to record on the meeting.
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	// URL returns the URI a given key would be stored under without writing.
	URL(key string) string
}

// Local stores documents on the local filesystem under a root directory.
type Local struct {
	root string
}

// NewLocal creates a filesystem-backed store rooted at dir.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document store root: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document store root: %w", err)
	}
	return &Local{root: abs}, nil
}

// Put writes data to root/key, creating parent directories as needed. Keys
// are sanitized so a hostile key cannot escape the root.
func (s *Local) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document %s: %w", key, err)
	}
	return "file://" + path, nil
}

// URL returns the file URI a key maps to.
func (s *Local) URL(key string) string {
	return "file://" + s.path(key)
}

func (s *Local) path(key string) string {
	clean := filepath.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	return filepath.Join(s.root, clean)
}
