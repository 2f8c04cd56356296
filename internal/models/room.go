package models

import (
	"time"

	"gorm.io/gorm"
)

// Room is a unit of client-posted work staffed by freelancers.
type Room struct {
	ID                   uint64         `gorm:"primarykey" json:"id"`
	UserID               uint64         `gorm:"not null;index" json:"user_id"`
	ManagerID            *uint64        `gorm:"index" json:"manager_id"`
	CategoryName         string         `gorm:"type:varchar(100)" json:"category_name"`
	BudgetCents          int64          `gorm:"not null;default:0" json:"budget_cents"`
	BudgetCurrency       string         `gorm:"type:varchar(3);not null;default:'USD'" json:"budget_currency"`
	Timeline             string         `gorm:"type:varchar(100)" json:"timeline"`
	Quality              string         `gorm:"type:varchar(100)" json:"quality"`
	Description          string         `gorm:"type:text" json:"description"`
	LastMessageCreatedAt *time.Time     `json:"last_message_created_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner       User         `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	Manager     *User        `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:RoomID" json:"assignments,omitempty"`
}

// IsClient reports whether userID owns or manages the room.
func (r Room) IsClient(userID uint64) bool {
	if r.UserID == userID {
		return true
	}
	return r.ManagerID != nil && *r.ManagerID == userID
}
