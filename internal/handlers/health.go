package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	queue queue.TaskQueue
}

func NewHealthHandler(db *gorm.DB, q queue.TaskQueue) *HealthHandler {
	return &HealthHandler{db: db, queue: q}
}

// Health reports database reachability and which queue transport is in use
func (h *HealthHandler) Health(c *gin.Context) {
	transport := "inline"
	if h.queue != nil && h.queue.IsAsync() {
		transport = "redis"
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": "unreachable",
			"queue":    transport,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "ok",
		"queue":    transport,
	})
}
