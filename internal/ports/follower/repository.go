package follower

import (
	"context"

	"socialfeed/internal/core/follower"
)

// FollowerRepository stores follow edges.
type FollowerRepository interface {
	FollowUser(ctx context.Context, follower *follower.Follower) (*follower.Follower, error)
	// UnfollowUser reports whether an edge was removed.
	UnfollowUser(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFollowersByUserID(ctx context.Context, userID string) ([]*follower.Follower, error)
	GetFollowingByUserID(ctx context.Context, followerID string) ([]*follower.Follower, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
}

type FollowerDTO struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	FollowerID string `json:"followerId"`
}
