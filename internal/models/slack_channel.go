package models

import (
	"fmt"
	"time"
)

type SlackChannelStatus int

const (
	SlackChannelStatusPending SlackChannelStatus = iota
	SlackChannelStatusActive
	SlackChannelStatusFailed
)

// SlackChannel binds a room (or, with no room, a freelancer's gig channel) to an
// external Slack channel.
type SlackChannel struct {
	ID           uint64             `gorm:"primarykey" json:"id"`
	BindingKey   string             `gorm:"type:varchar(100);uniqueIndex;not null" json:"-"`
	RoomID       *uint64            `gorm:"index" json:"room_id"`
	FreelancerID *uint64            `gorm:"index" json:"freelancer_id"`
	UserID       *uint64            `gorm:"index" json:"user_id"`
	ChannelID    string             `gorm:"type:varchar(50);index" json:"channel_id"`
	Token        string             `gorm:"type:varchar(255)" json:"-"`
	WebHookURL   string             `gorm:"type:varchar(500)" json:"-"`
	TeamID       string             `gorm:"type:varchar(50)" json:"team_id"`
	TeamName     string             `gorm:"type:varchar(255)" json:"team_name"`
	Scope        string             `gorm:"type:varchar(255)" json:"scope"`
	Status       SlackChannelStatus `gorm:"not null;default:0" json:"status"`
	Sync         bool               `gorm:"not null;default:false" json:"sync"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// SlackBindingKey identifies a (room, freelancer) binding; either side may be nil.
func SlackBindingKey(roomID, freelancerID *uint64) string {
	var r, f uint64
	if roomID != nil {
		r = *roomID
	}
	if freelancerID != nil {
		f = *freelancerID
	}
	return fmt.Sprintf("room:%d:freelancer:%d", r, f)
}

// Relayable reports whether outbound messages can be posted to this binding.
func (s SlackChannel) Relayable() bool {
	if !s.Sync {
		return false
	}
	return s.ChannelID != "" || s.WebHookURL != ""
}

type RelayDirection string

const (
	RelayDirectionInbound  RelayDirection = "inbound"
	RelayDirectionOutbound RelayDirection = "outbound"
)

// RelayMarker records a Slack message timestamp that has already crossed the
// bridge, so the opposite direction can recognise it as an echo.
type RelayMarker struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Channel   string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_relay_markers_channel_ts" json:"channel"`
	TS        string         `gorm:"column:ts;type:varchar(50);not null;uniqueIndex:idx_relay_markers_channel_ts" json:"ts"`
	RoomID    uint64         `gorm:"not null;index" json:"room_id"`
	MessageID uint64         `gorm:"index" json:"message_id"`
	Direction RelayDirection `gorm:"type:varchar(10);not null" json:"direction"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (RelayMarker) TableName() string {
	return "message_slack_histories"
}
