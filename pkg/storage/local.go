package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage writes objects to the local filesystem. Development only;
// PresignUpload is not supported and callers fall back to server-side Upload.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage creates a filesystem-backed storage rooted at baseDir.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// PresignUpload is unsupported for local storage.
func (s *LocalStorage) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "", fmt.Errorf("local storage does not support presigned uploads")
}

// Upload writes the object under the base directory.
func (s *LocalStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, body)
	return err
}

// PublicURL returns the serving URL for a stored object.
func (s *LocalStorage) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// Delete removes an object if present.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
