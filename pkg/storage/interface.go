package storage

import (
	"context"
	"io"
	"time"
)

// Storage abstracts the image object store (S3/R2/MinIO or local disk).
type Storage interface {
	// PresignUpload returns a URL the client PUTs the object to directly.
	PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error)

	// Upload writes an object server-side. Used by the local driver and tests.
	Upload(ctx context.Context, key, contentType string, body io.Reader) error

	// PublicURL returns the stable read URL for a stored object.
	PublicURL(key string) string

	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
