package dto

import (
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/utils"
)

// PostMessageRequest is the body of POST /rooms/:id/messages
type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// MessageDTO represents a room message in API responses
type MessageDTO struct {
	ID                 uint64               `json:"id"`
	RoomID             uint64               `json:"room_id"`
	UserID             *uint64              `json:"user_id"`
	FreelancerID       *uint64              `json:"freelancer_id"`
	Body               string               `json:"body"`
	MsgType            models.MessageType   `json:"msg_type"`
	Source             models.MessageSource `json:"source"`
	OneMinFromPrevious bool                 `json:"one_mn_from_previous"`
	CreatedAt          time.Time            `json:"created_at"`
}

// MessageListResponse represents a page of messages, newest first
type MessageListResponse struct {
	Messages   []MessageDTO `json:"messages"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int          `json:"total_pages"`
}

// UnseenResponse reports the caller's unseen count in a room
type UnseenResponse struct {
	RoomID uint64 `json:"room_id"`
	Count  int64  `json:"count"`
}

// SeenResponse reports how many markers were cleared
type SeenResponse struct {
	RoomID  uint64 `json:"room_id"`
	Cleared int64  `json:"cleared"`
}

func ToMessageDTO(m models.Message) MessageDTO {
	return MessageDTO{
		ID:                 m.ID,
		RoomID:             m.RoomID,
		UserID:             m.UserID,
		FreelancerID:       m.FreelancerID,
		Body:               m.Body,
		MsgType:            m.MsgType,
		Source:             m.Source,
		OneMinFromPrevious: m.OneMinFromPrevious,
		CreatedAt:          m.CreatedAt,
	}
}

func ToMessageListResponse(messages []models.Message, page utils.PaginationParams, totalCount int64) MessageListResponse {
	items := make([]MessageDTO, len(messages))
	for i, m := range messages {
		items[i] = ToMessageDTO(m)
	}
	return MessageListResponse{
		Messages:   items,
		Page:       page.Page,
		PageSize:   page.Limit,
		TotalCount: totalCount,
		TotalPages: page.TotalPages(totalCount),
	}
}
