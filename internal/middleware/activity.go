package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/services"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

// TrackActivity stamps last_seen_at for the authenticated actor. Failures are
// logged and never block the request.
func TrackActivity(freelancers *services.FreelancerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := GetActor(c); ok {
			if err := freelancers.Touch(c.Request.Context(), actor); err != nil {
				logger.Warn().Err(err).Str("actor", actor.String()).Msg("failed to record activity")
			}
		}
		c.Next()
	}
}
