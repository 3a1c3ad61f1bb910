package mediaapp

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	mediaEntity "socialfeed/internal/core/media"
	mediaPort "socialfeed/internal/ports/media"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type MediaService struct {
	Storage mediaPort.MediaStorage
	Logger  *zap.Logger
}

func NewMediaService(storage mediaPort.MediaStorage, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{Storage: storage, Logger: logger}
}

// UploadMedia stores the file under <ownerID>/<random id><ext> and returns the
// descriptor a post can reference.
func (s *MediaService) UploadMedia(ctx context.Context, ownerID, filename, contentType string, size int64, r io.Reader) (*mediaPort.MediaDTO, error) {
	if s.Storage == nil {
		return nil, mediaEntity.ErrStorageUnavailable
	}
	mediaType, err := mediaEntity.TypeFor(contentType)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > mediaEntity.MaxUploadSize {
		return nil, fmt.Errorf("%w: size %d", mediaEntity.ErrUnsupportedMedia, size)
	}

	key := ownerID + "/" + uuid.Must(uuid.NewV4()).String() + strings.ToLower(filepath.Ext(filename))
	url, err := s.Storage.Put(ctx, key, contentType, size, r)
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}

	s.Logger.Info("Stored media", zap.String("key", key), zap.String("type", string(mediaType)), zap.Int64("size", size))
	return &mediaPort.MediaDTO{URL: url, Type: string(mediaType)}, nil
}
