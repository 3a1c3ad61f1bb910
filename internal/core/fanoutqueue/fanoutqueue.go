package fanoutqueue

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// FanoutQueue records a freshly created post whose followers' cached
// timelines still need to be invalidated.
type FanoutQueue struct {
	ID          uuid.UUID  `gorm:"primary_key;type:char(36)"`
	PostID      uuid.UUID  `gorm:"type:char(36);not null"`
	UserID      uuid.UUID  `gorm:"type:char(36);not null"`
	Status      string     `gorm:"type:varchar(20);not null;index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	ProcessedAt *time.Time `gorm:"index"`
}
