package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
	"github.com/AC-trading/ac-trading/pkg/storage"
)

const presignExpiry = 10 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// imageServiceImpl implements ImageService on top of object storage.
type imageServiceImpl struct {
	store storage.Storage
}

// NewImageService creates a new image service.
func NewImageService(store storage.Storage) ImageService {
	return &imageServiceImpl{store: store}
}

// PresignUpload issues a short-lived upload URL under the member's
// prefix so clients upload directly to storage.
func (s *imageServiceImpl) PresignUpload(ctx context.Context, memberUUID, contentType string) (*domain.PresignResponse, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	key := fmt.Sprintf("images/%s/%s.%s", memberUUID, uuid.New().String(), ext)
	uploadURL, err := s.store.PresignUpload(ctx, key, contentType, presignExpiry)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("key", key).Msg("failed to presign upload")
		return nil, err
	}

	return &domain.PresignResponse{
		UploadURL: uploadURL,
		FileURL:   s.store.PublicURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}
