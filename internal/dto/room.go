package dto

import (
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/utils"
	"github.com/yukikurage/room-workflow-api/internal/workflow"
)

// AssignRequest is the body of POST /rooms/:id/assignments
type AssignRequest struct {
	FreelancerID uint64 `json:"freelancer_id" binding:"required"`
}

// EventRequest is the body of POST /rooms/:id/assignments/:freelancer_id/events
type EventRequest struct {
	Event string `json:"event" binding:"required"`
}

// RateRequest is the body of POST /rooms/:id/assignments/:freelancer_id/rate
type RateRequest struct {
	Rate int `json:"rate" binding:"required"`
}

// AssignmentDTO represents an assignment in API responses
type AssignmentDTO struct {
	ID              uint64                  `json:"id"`
	FreelancerID    uint64                  `json:"freelancer_id"`
	RoomID          uint64                  `json:"room_id"`
	Status          models.AssignmentStatus `json:"status"`
	AvailableEvents []workflow.Event        `json:"available_events"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// RateDTO represents a freelancer rating in API responses
type RateDTO struct {
	ID           uint64    `json:"id"`
	FreelancerID uint64    `json:"freelancer_id"`
	RoomID       uint64    `json:"room_id"`
	Rate         int       `json:"rate"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoomListItemDTO represents a room in list responses
type RoomListItemDTO struct {
	ID                   uint64     `json:"id"`
	UserID               uint64     `json:"user_id"`
	ManagerID            *uint64    `json:"manager_id"`
	CategoryName         string     `json:"category_name"`
	BudgetCents          int64      `json:"budget_cents"`
	BudgetCurrency       string     `json:"budget_currency"`
	Timeline             string     `json:"timeline"`
	Quality              string     `json:"quality"`
	Description          string     `json:"description"`
	LastMessageCreatedAt *time.Time `json:"last_message_created_at"`
	CreatedAt            time.Time  `json:"created_at"`
}

// RoomListResponse represents a paginated list of rooms in one bucket
type RoomListResponse struct {
	Bucket     workflow.Bucket   `json:"bucket"`
	Rooms      []RoomListItemDTO `json:"rooms"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// JustAcceptedResponse is the body of GET /freelancers/me/rooms/:id/just-accepted
type JustAcceptedResponse struct {
	RoomID       uint64 `json:"room_id"`
	JustAccepted bool   `json:"just_accepted"`
}

// ToAssignmentDTO converts an Assignment model to AssignmentDTO
func ToAssignmentDTO(a models.Assignment) AssignmentDTO {
	events := workflow.AvailableEvents(a.Status)
	if events == nil {
		events = []workflow.Event{}
	}
	return AssignmentDTO{
		ID:              a.ID,
		FreelancerID:    a.FreelancerID,
		RoomID:          a.RoomID,
		Status:          a.Status,
		AvailableEvents: events,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ToRateDTO converts a FreelancerRate model to RateDTO
func ToRateDTO(r models.FreelancerRate) RateDTO {
	return RateDTO{
		ID:           r.ID,
		FreelancerID: r.FreelancerID,
		RoomID:       r.RoomID,
		Rate:         r.Rate,
		CreatedAt:    r.CreatedAt,
	}
}

// ToRoomListItemDTO converts a Room model to RoomListItemDTO
func ToRoomListItemDTO(room models.Room) RoomListItemDTO {
	return RoomListItemDTO{
		ID:                   room.ID,
		UserID:               room.UserID,
		ManagerID:            room.ManagerID,
		CategoryName:         room.CategoryName,
		BudgetCents:          room.BudgetCents,
		BudgetCurrency:       room.BudgetCurrency,
		Timeline:             room.Timeline,
		Quality:              room.Quality,
		Description:          room.Description,
		LastMessageCreatedAt: room.LastMessageCreatedAt,
		CreatedAt:            room.CreatedAt,
	}
}

// ToRoomListResponse converts a page of rooms to RoomListResponse
func ToRoomListResponse(bucket workflow.Bucket, rooms []models.Room, page utils.PaginationParams, totalCount int64) RoomListResponse {
	items := make([]RoomListItemDTO, len(rooms))
	for i, room := range rooms {
		items[i] = ToRoomListItemDTO(room)
	}

	return RoomListResponse{
		Bucket:     bucket,
		Rooms:      items,
		Page:       page.Page,
		PageSize:   page.Limit,
		TotalCount: totalCount,
		TotalPages: page.TotalPages(totalCount),
	}
}
