package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/constants"
	"github.com/yukikurage/room-workflow-api/internal/dto"
	apierrors "github.com/yukikurage/room-workflow-api/internal/errors"
	"github.com/yukikurage/room-workflow-api/internal/services"
	"github.com/yukikurage/room-workflow-api/internal/utils"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// ListMessages returns the room's messages, newest first, and marks them seen
func (h *MessageHandler) ListMessages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, constants.MessagePageSize)
	messages, total, err := h.messages.ListMessages(c.Request.Context(), actor, roomID, params)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageListResponse(messages, params, total))
}

// PostMessage adds a message to the room
func (h *MessageHandler) PostMessage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.messages.PostMessage(c.Request.Context(), actor, roomID, req.Body)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}

// MarkSeen clears the caller's unseen markers in the room
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	n, err := h.messages.MarkSeen(c.Request.Context(), actor, roomID)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SeenResponse{RoomID: roomID, Cleared: n})
}

// UnseenCount returns the caller's unseen count in the room
func (h *MessageHandler) UnseenCount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	n, err := h.messages.UnseenCount(c.Request.Context(), actor, roomID)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnseenResponse{RoomID: roomID, Count: n})
}
