package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/constants"
	apierrors "github.com/yukikurage/room-workflow-api/internal/errors"
	"github.com/yukikurage/room-workflow-api/internal/models"
)

// RequireAuth resolves the session into an actor. A session carries either a
// user_id (client or manager) or a freelancer_id.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		var actor models.Actor
		if id, ok := toUint64(session.Get(constants.ContextKeyUserID)); ok {
			actor = models.UserActor(id)
		} else if id, ok := toUint64(session.Get(constants.ContextKeyFreelancerID)); ok {
			actor = models.FreelancerActor(id)
		} else {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// GetActor retrieves the current actor from context
func GetActor(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

func toUint64(v interface{}) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
