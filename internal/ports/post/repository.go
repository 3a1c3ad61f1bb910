package post

import (
	"context"
	"time"

	"socialfeed/internal/core/post"

	"github.com/gofrs/uuid"
)

// PostRepository stores and reads posts.
type PostRepository interface {
	Create(ctx context.Context, post *post.Post) (*post.Post, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// FindByIDs loads posts with their authors. Order of the result is unspecified.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*post.Post, error)
	// FindVisibleIDs returns ids of posts by viewerID or anyone viewerID follows,
	// newest first, ties broken by id descending.
	FindVisibleIDs(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error)
}

// PostDTO is the client-facing view of a post.
type PostDTO struct {
	ID         string    `json:"id"`
	Text       *string   `json:"text"`
	CreateTime time.Time `json:"createTime"`
	Likes      int64     `json:"likes"`
	Liked      bool      `json:"liked"`
	Media      *MediaDTO `json:"media"`
	Author     AuthorDTO `json:"author"`
}

type MediaDTO struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type AuthorDTO struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Avatar    string `json:"avatar"`
}
