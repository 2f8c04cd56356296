package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/dto"
	apierrors "github.com/yukikurage/room-workflow-api/internal/errors"
	"github.com/yukikurage/room-workflow-api/internal/middleware"
	"github.com/yukikurage/room-workflow-api/internal/services"
	"github.com/yukikurage/room-workflow-api/internal/slack"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

// maxEventBody caps Events API payloads
const maxEventBody = 1 << 20

type SlackHandler struct {
	bridge        *services.SlackBridge
	signingSecret string
}

func NewSlackHandler(bridge *services.SlackBridge, signingSecret string) *SlackHandler {
	return &SlackHandler{bridge: bridge, signingSecret: signingSecret}
}

// Events receives Slack Events API callbacks
func (h *SlackHandler) Events(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBody))
	if err != nil {
		apierrors.BadRequest(c, "Unreadable body")
		return
	}

	if err := slack.Verify(c.Request.Header, body, h.signingSecret); err != nil {
		logger.Warn().Err(err).Str("ip", c.ClientIP()).Msg("rejected slack event")
		apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeInvalidSignature, "Invalid signature"))
		return
	}

	event, err := slack.ParseEvent(body)
	if err != nil {
		apierrors.BadRequest(c, "Invalid event payload")
		return
	}

	if event.Challenge != "" {
		c.JSON(http.StatusOK, gin.H{"challenge": event.Challenge})
		return
	}
	if event.Message == nil {
		c.Status(http.StatusOK)
		return
	}

	msg := event.Message
	_, err = h.bridge.RelayInbound(c.Request.Context(), msg.Channel, msg.Text, msg.TS)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrRelayEcho):
		logger.Debug().Str("channel", msg.Channel).Str("ts", msg.TS).Msg("slack echo ignored")
	case errors.Is(err, services.ErrSlackChannelNotFound):
		logger.Debug().Str("channel", msg.Channel).Msg("message from unbound slack channel ignored")
	default:
		// a non-2xx makes Slack redeliver; the relay marker absorbs the duplicate
		logger.Error().Err(err).Str("channel", msg.Channel).Str("ts", msg.TS).Msg("inbound slack relay failed")
		apierrors.InternalError(c, "")
		return
	}
	c.Status(http.StatusOK)
}

// Provision binds the room to a Slack channel for the caller. Clients may bind
// any freelancer of the room; a freelancer only themselves.
func (h *SlackHandler) Provision(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	room, ok := middleware.GetRoom(c)
	if !ok {
		apierrors.NotFound(c, "Room not found")
		return
	}

	var req dto.ProvisionSlackRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	freelancerID := req.FreelancerID
	switch {
	case actor.IsFreelancer():
		if freelancerID != nil && *freelancerID != actor.ID {
			apierrors.FromServiceError(c, services.ErrNotSelf)
			return
		}
		id := actor.ID
		freelancerID = &id
	case !room.IsClient(actor.ID):
		apierrors.FromServiceError(c, services.ErrNotRoomClient)
		return
	}

	channel, err := h.bridge.ProvisionChannel(c.Request.Context(), &room.ID, freelancerID)
	if err != nil {
		apierrors.FromServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSlackChannelDTO(*channel))
}
