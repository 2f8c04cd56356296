package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a client posting rooms, or a manager overseeing them.
type User struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Email      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username   string         `gorm:"type:varchar(100)" json:"username"`
	FirstName  string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName   string         `gorm:"type:varchar(100)" json:"last_name"`
	LastSeenAt *time.Time     `json:"last_seen_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	OwnedRooms   []Room `gorm:"foreignKey:UserID" json:"-"`
	ManagedRooms []Room `gorm:"foreignKey:ManagerID" json:"-"`
}

func (u User) FullName() string {
	return joinName(u.FirstName, u.LastName)
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
