package media

import (
	"errors"
	"strings"

	"socialfeed/internal/core/post"
)

var (
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrStorageUnavailable = errors.New("media storage is not configured")
)

// MaxUploadSize bounds a single uploaded file.
const MaxUploadSize = 50 << 20

// TypeFor maps a MIME content type onto the post media type it can carry.
func TypeFor(contentType string) (post.MediaType, error) {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return post.MediaImage, nil
	case strings.HasPrefix(mime, "video/"):
		return post.MediaVideo, nil
	}
	return "", ErrUnsupportedMedia
}
