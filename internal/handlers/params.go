package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/room-workflow-api/internal/errors"
	"github.com/yukikurage/room-workflow-api/internal/middleware"
	"github.com/yukikurage/room-workflow-api/internal/models"
)

// uintParam parses the named path parameter, answering 400 when it is not an ID.
func uintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// currentActor answers 401 when the request carries no actor.
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return models.Actor{}, false
	}
	return actor, true
}
