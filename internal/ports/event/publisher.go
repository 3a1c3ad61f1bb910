package event

import (
	"context"
	"time"
)

const (
	TypePostCreated = "post.created"
	TypePostLiked   = "post.liked"
	TypePostUnliked = "post.unliked"
)

type Event struct {
	Type       string    `json:"type"`
	PostID     string    `json:"postId"`
	UserID     string    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}
