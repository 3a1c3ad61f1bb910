package follower

import (
	"errors"
	"time"

	"socialfeed/internal/core/user"

	"github.com/gofrs/uuid"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
)

// Follower is the directed edge FollowerID -> UserID.
type Follower struct {
	ID         uuid.UUID `gorm:"primary_key;type:char(36)"`
	UserID     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_follow,priority:2;index"`
	User       user.User `gorm:"foreignkey:UserID"`
	FollowerID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_follow,priority:1"`
	Follower   user.User `gorm:"foreignkey:FollowerID"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
