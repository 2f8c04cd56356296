package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/dto"
	apierrors "github.com/yukikurage/room-workflow-api/internal/errors"
	"github.com/yukikurage/room-workflow-api/internal/services"
)

type FreelancerHandler struct {
	freelancers *services.FreelancerService
}

func NewFreelancerHandler(freelancers *services.FreelancerService) *FreelancerHandler {
	return &FreelancerHandler{freelancers: freelancers}
}

// DeleteFreelancer deletes the caller's own freelancer account
func (h *FreelancerHandler) DeleteFreelancer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.freelancers.Delete(c.Request.Context(), actor, id); err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetStatus switches the caller between live and pause
func (h *FreelancerHandler) SetStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.freelancers.SetStatus(c.Request.Context(), actor, id, req.Status); err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// Presence reports whether a freelancer is online
func (h *FreelancerHandler) Presence(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	presence, err := h.freelancers.Presence(c.Request.Context(), id)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, presence)
}
