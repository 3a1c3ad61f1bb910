package media

import (
	"context"
	"io"
)

// MediaStorage puts objects into a bucket and returns their public URL.
type MediaStorage interface {
	Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error)
}

type MediaDTO struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}
