package dto

import (
	"github.com/yukikurage/room-workflow-api/internal/models"
)

// SetStatusRequest is the body of PUT /freelancers/:id/status
type SetStatusRequest struct {
	Status models.FreelancerStatus `json:"status" binding:"required"`
}

// ProvisionSlackRequest is the body of POST /rooms/:id/slack. Without a
// freelancer the binding is the room client's own.
type ProvisionSlackRequest struct {
	FreelancerID *uint64 `json:"freelancer_id"`
}

// SlackChannelDTO represents a Slack binding in API responses
type SlackChannelDTO struct {
	ID           uint64  `json:"id"`
	RoomID       *uint64 `json:"room_id"`
	FreelancerID *uint64 `json:"freelancer_id"`
	ChannelID    string  `json:"channel_id"`
	Status       string  `json:"status"`
	Sync         bool    `json:"sync"`
}

func ToSlackChannelDTO(ch models.SlackChannel) SlackChannelDTO {
	status := "pending"
	switch ch.Status {
	case models.SlackChannelStatusActive:
		status = "active"
	case models.SlackChannelStatusFailed:
		status = "failed"
	}
	return SlackChannelDTO{
		ID:           ch.ID,
		RoomID:       ch.RoomID,
		FreelancerID: ch.FreelancerID,
		ChannelID:    ch.ChannelID,
		Status:       status,
		Sync:         ch.Sync,
	}
}
