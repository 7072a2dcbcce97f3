package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// ErrAssetNotFound is returned when an optional asset does not exist
var ErrAssetNotFound = errors.New("asset not found")

// Asset is a small file served as-is, such as the page logo
type Asset struct {
	Key         string
	ContentType string
	Data        []byte
}

// AssetStore fetches static assets by key
type AssetStore interface {
	Fetch(ctx context.Context, key string) (*Asset, error)
	// Stat reports whether key exists without reading its content
	Stat(ctx context.Context, key string) error
}

type fileStore struct {
	root string
}

// NewFileStore reads assets relative to root. An empty root means the working directory.
func NewFileStore(root string) AssetStore {
	return &fileStore{root: root}
}

// Fetch reads the file at key below the store root
func (s *fileStore) Fetch(ctx context.Context, key string) (*Asset, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
		}
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}

	return &Asset{
		Key:         key,
		ContentType: detectContentType(key, data),
		Data:        data,
	}, nil
}

// Stat checks that key names a regular file below the store root
func (s *fileStore) Stat(ctx context.Context, key string) error {
	info, err := os.Stat(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, key)
		}
		return fmt.Errorf("failed to stat asset: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, key)
	}
	return nil
}

func (s *fileStore) path(key string) string {
	if s.root == "" {
		return key
	}
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// detectContentType prefers the extension and falls back to sniffing the bytes
func detectContentType(key string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
