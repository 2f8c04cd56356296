package models

import "time"

type AssignmentStatus string

const (
	AssignmentStatusPending     AssignmentStatus = "pending"
	AssignmentStatusAccepted    AssignmentStatus = "accepted"
	AssignmentStatusInProgress  AssignmentStatus = "in_progress"
	AssignmentStatusMoreWork    AssignmentStatus = "more_work"
	AssignmentStatusNotFinished AssignmentStatus = "not_finished"
	AssignmentStatusCompleted   AssignmentStatus = "completed"
	AssignmentStatusRejected    AssignmentStatus = "rejected"
)

// Assignment binds one freelancer to one room. Status is only written through
// the assignment repository's create and transition paths.
type Assignment struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	FreelancerID uint64           `gorm:"not null;uniqueIndex:idx_assignments_pair" json:"freelancer_id"`
	RoomID       uint64           `gorm:"not null;uniqueIndex:idx_assignments_pair;index" json:"room_id"`
	Status       AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relations
	Freelancer Freelancer `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Room       Room       `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

func (Assignment) TableName() string {
	return "freelancers_rooms"
}

// FreelancerRate is a client's rating of a freelancer for a completed assignment.
type FreelancerRate struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	AssignmentID uint64    `gorm:"not null;uniqueIndex" json:"assignment_id"`
	FreelancerID uint64    `gorm:"not null;index" json:"freelancer_id"`
	RoomID       uint64    `gorm:"not null;index" json:"room_id"`
	UserID       uint64    `gorm:"not null;index" json:"user_id"`
	Rate         int       `gorm:"not null" json:"rate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
