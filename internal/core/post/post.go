package post

import (
	"errors"
	"time"

	"socialfeed/internal/core/user"

	"github.com/gofrs/uuid"
)

var ErrPostNotFound = errors.New("post not found")

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaVideo
}

// Post is the stored form. Text and media are fixed at creation; the like
// count is never stored here.
type Post struct {
	ID        uuid.UUID  `gorm:"primary_key;type:char(36)"`
	UserID    uuid.UUID  `gorm:"type:char(36);not null;index"`
	User      user.User  `gorm:"foreignkey:UserID"`
	Text      *string    `gorm:"type:text"`
	MediaType *MediaType `gorm:"type:varchar(10)"`
	MediaURL  *string    `gorm:"type:varchar(2048)"`
	CreatedAt time.Time  `gorm:"not null;index"`
}
