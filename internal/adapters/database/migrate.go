package database

import (
	"socialfeed/internal/core/fanoutqueue"
	"socialfeed/internal/core/follower"
	"socialfeed/internal/core/like"
	"socialfeed/internal/core/post"
	"socialfeed/internal/core/user"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&post.Post{},
		&like.Like{},
		&follower.Follower{},
		&fanoutqueue.FanoutQueue{},
	)
}
