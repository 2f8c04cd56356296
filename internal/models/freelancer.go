package models

import (
	"time"

	"gorm.io/gorm"
)

type FreelancerStatus string

const (
	FreelancerStatusPause FreelancerStatus = "pause"
	FreelancerStatusLive  FreelancerStatus = "live"
)

type Freelancer struct {
	ID                uint64           `gorm:"primarykey" json:"id"`
	Email             string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username          string           `gorm:"type:varchar(100)" json:"username"`
	FirstName         string           `gorm:"type:varchar(100)" json:"first_name"`
	LastName          string           `gorm:"type:varchar(100)" json:"last_name"`
	Headline          string           `gorm:"type:varchar(255)" json:"headline"`
	Category          string           `gorm:"type:varchar(100)" json:"category"`
	PrimarySkill      string           `gorm:"type:varchar(100)" json:"primary_skill"`
	YearsOfExperience string           `gorm:"type:varchar(50)" json:"years_of_experience"`
	Availability      *time.Time       `json:"availability"`
	HourlyRateCents   int64            `gorm:"not null;default:0" json:"hourly_rate_cents"`
	Status            FreelancerStatus `gorm:"type:varchar(20);not null;default:'pause'" json:"status"`
	LastSeenAt        *time.Time       `json:"last_seen_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	Assignments []Assignment `gorm:"foreignKey:FreelancerID" json:"-"`
}

func (f Freelancer) FullName() string {
	return joinName(f.FirstName, f.LastName)
}

// Online reports whether the freelancer was seen within window of now.
func (f Freelancer) Online(now time.Time, window time.Duration) bool {
	if f.LastSeenAt == nil {
		return false
	}
	return f.LastSeenAt.After(now.Add(-window))
}
