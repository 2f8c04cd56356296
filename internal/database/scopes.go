package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OwnedBy restricts rows carrying a user_id/freelancer_id pair to the actor.
func OwnedBy(actor models.Actor) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.IsFreelancer() {
			return db.Where("freelancer_id = ?", actor.ID)
		}
		return db.Where("user_id = ?", actor.ID)
	}
}
