package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/constants"
	"github.com/yukikurage/room-workflow-api/internal/dto"
	apierrors "github.com/yukikurage/room-workflow-api/internal/errors"
	"github.com/yukikurage/room-workflow-api/internal/services"
	"github.com/yukikurage/room-workflow-api/internal/utils"
	"github.com/yukikurage/room-workflow-api/internal/workflow"
)

type AssignmentHandler struct {
	assignments *services.AssignmentService
}

func NewAssignmentHandler(assignments *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Assign assigns a freelancer to the room
func (h *AssignmentHandler) Assign(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignments.Assign(c.Request.Context(), actor, req.FreelancerID, roomID)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// GetAssignment returns one freelancer's assignment to the room
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	freelancerID, ok := uintParam(c, "freelancer_id")
	if !ok {
		return
	}

	assignment, err := h.assignments.Find(c.Request.Context(), freelancerID, roomID)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// ApplyEvent moves the assignment through the status machine
func (h *AssignmentHandler) ApplyEvent(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	freelancerID, ok := uintParam(c, "freelancer_id")
	if !ok {
		return
	}

	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignments.ApplyEvent(c.Request.Context(), actor, freelancerID, roomID, workflow.Event(req.Event))
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// Rate records the client's rating of a completed assignment
func (h *AssignmentHandler) Rate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	freelancerID, ok := uintParam(c, "freelancer_id")
	if !ok {
		return
	}

	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	rate, err := h.assignments.RateFreelancer(c.Request.Context(), actor, freelancerID, roomID, req.Rate)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRateDTO(*rate))
}

// ListMyRooms returns the current freelancer's rooms in the requested bucket
func (h *AssignmentHandler) ListMyRooms(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if !actor.IsFreelancer() {
		apierrors.Forbidden(c, "Only freelancers have room buckets")
		return
	}

	bucket, err := workflow.ParseBucket(c.DefaultQuery("bucket", string(workflow.BucketAvailable)))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	params := utils.GetPaginationParams(c, constants.RoomPageSize)
	rooms, total, err := h.assignments.ListRooms(c.Request.Context(), actor.ID, bucket, params)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoomListResponse(bucket, rooms, params, total))
}

// JustAccepted reports whether the room was just accepted by the current freelancer
func (h *AssignmentHandler) JustAccepted(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if !actor.IsFreelancer() {
		apierrors.Forbidden(c, "Only freelancers have room buckets")
		return
	}
	roomID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	justAccepted, err := h.assignments.JustAccepted(c.Request.Context(), actor.ID, roomID)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.JustAcceptedResponse{RoomID: roomID, JustAccepted: justAccepted})
}
