package repository

import (
	"context"
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/utils"
	"gorm.io/gorm"
)

// GormRoomRepository is a GORM implementation of RoomRepository
type GormRoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *GormRoomRepository) FindByID(ctx context.Context, id uint64) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *GormRoomRepository) Participants(ctx context.Context, room *models.Room) ([]models.Actor, error) {
	participants := []models.Actor{models.UserActor(room.UserID)}
	if room.ManagerID != nil && *room.ManagerID != room.UserID {
		participants = append(participants, models.UserActor(*room.ManagerID))
	}

	var freelancerIDs []uint64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("room_id = ? AND status <> ?", room.ID, models.AssignmentStatusRejected).
		Order("id ASC").
		Pluck("freelancer_id", &freelancerIDs).Error
	if err != nil {
		return nil, err
	}

	for _, id := range freelancerIDs {
		participants = append(participants, models.FreelancerActor(id))
	}
	return participants, nil
}

func (r *GormRoomRepository) SetLastMessageAt(ctx context.Context, roomID uint64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", roomID).
		UpdateColumn("last_message_created_at", at).Error
}

func (r *GormRoomRepository) ListForFreelancer(ctx context.Context, freelancerID uint64, statuses []models.AssignmentStatus, page utils.PaginationParams) ([]models.Room, int64, error) {
	var rooms []models.Room

	if len(statuses) == 0 {
		return []models.Room{}, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Room{}).
		Joins("JOIN freelancers_rooms ON freelancers_rooms.room_id = rooms.id").
		Where("freelancers_rooms.freelancer_id = ?", freelancerID).
		Where("freelancers_rooms.status IN ?", statuses)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("CASE WHEN rooms.last_message_created_at IS NULL THEN 1 ELSE 0 END, rooms.last_message_created_at DESC, rooms.id DESC")
	if page.Limit > 0 {
		listQuery = listQuery.Offset(page.Offset).Limit(page.Limit)
	}

	if err := listQuery.Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}
