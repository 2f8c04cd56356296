package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/constants"
	apierrors "github.com/yukikurage/room-workflow-api/internal/errors"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"gorm.io/gorm"
)

// RequireRoomAccess loads the room named by :id and lets only its participants
// through. Everyone else gets 404 so room existence does not leak.
func RequireRoomAccess(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid room ID")
			c.Abort()
			return
		}

		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		room, err := store.Rooms.FindByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Room not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		participants, err := store.Rooms.Participants(ctx, room)
		if err != nil {
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}
		if !isParticipant(participants, actor) {
			apierrors.NotFound(c, "Room not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyRoom, *room)
		c.Next()
	}
}

// GetRoom retrieves the room loaded by RequireRoomAccess
func GetRoom(c *gin.Context) (models.Room, bool) {
	v, exists := c.Get(constants.ContextKeyRoom)
	if !exists {
		return models.Room{}, false
	}
	room, ok := v.(models.Room)
	return room, ok
}

func isParticipant(participants []models.Actor, actor models.Actor) bool {
	for _, p := range participants {
		if p == actor {
			return true
		}
	}
	return false
}
