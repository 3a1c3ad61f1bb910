package like

import (
	"time"

	"github.com/gofrs/uuid"
)

// Like is unique per (UserID, PostID) through its composite primary key.
type Like struct {
	UserID    uuid.UUID `gorm:"primaryKey;type:char(36)"`
	PostID    uuid.UUID `gorm:"primaryKey;type:char(36);index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
