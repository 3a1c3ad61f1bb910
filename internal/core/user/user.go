package user

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID        uuid.UUID `gorm:"primary_key;type:char(36)"`
	Firstname string    `gorm:"type:varchar(100);not null"`
	Lastname  string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Avatar    string    `gorm:"type:varchar(2048)"`
	Password  string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
