package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36"          json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"        json:"email"`
	Name         string    `gorm:"not null"                    json:"name"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	CreatedAt    time.Time `                                   json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// All lists every model owned by the service, in migration order.
func All() []any {
	return []any{&User{}}
}
