package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageType string

const (
	MessageTypeText         MessageType = "text"
	MessageTypeTaskAccepted MessageType = "task_accepted"
)

type MessageSource string

const (
	MessageSourceWeb   MessageSource = "web"
	MessageSourceSlack MessageSource = "slack"
)

// Message belongs to a room. It is authored by a user or a freelancer, never
// both; a message with neither is a system message.
type Message struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	RoomID             uint64         `gorm:"not null;index" json:"room_id"`
	UserID             *uint64        `gorm:"index" json:"user_id"`
	FreelancerID       *uint64        `gorm:"index" json:"freelancer_id"`
	Body               string         `gorm:"type:text" json:"body"`
	MsgType            MessageType    `gorm:"type:varchar(30);not null;default:'text'" json:"msg_type"`
	Source             MessageSource  `gorm:"type:varchar(20);not null;default:'web'" json:"source"`
	SlackTS            string         `gorm:"type:varchar(50)" json:"slack_ts,omitempty"`
	SlackChannel       string         `gorm:"type:varchar(50)" json:"slack_channel,omitempty"`
	OneMinFromPrevious bool           `gorm:"column:one_mn_from_previous;not null;default:false" json:"one_mn_from_previous"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m Message) IsSystem() bool {
	return m.UserID == nil && m.FreelancerID == nil
}

func (m Message) IsTaskAccepted() bool {
	return m.MsgType == MessageTypeTaskAccepted
}

// UnseenMessage is a pending-read marker for one recipient of one message.
type UnseenMessage struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	MessageID    uint64    `gorm:"not null;index" json:"message_id"`
	RoomID       uint64    `gorm:"not null;index" json:"room_id"`
	UserID       *uint64   `gorm:"index" json:"user_id"`
	FreelancerID *uint64   `gorm:"index" json:"freelancer_id"`
	CreatedAt    time.Time `json:"created_at"`
}
