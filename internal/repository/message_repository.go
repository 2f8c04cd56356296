package repository

import (
	"context"

	"github.com/yukikurage/room-workflow-api/internal/database"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/utils"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *GormMessageRepository) FindByID(ctx context.Context, id uint64) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *GormMessageRepository) Update(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *GormMessageRepository) Latest(ctx context.Context, roomID uint64) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *GormMessageRepository) LatestByAuthor(ctx context.Context, roomID uint64, author models.Actor) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(author)).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *GormMessageRepository) List(ctx context.Context, roomID uint64, page utils.PaginationParams) ([]models.Message, int64, error) {
	var messages []models.Message

	query := r.db.WithContext(ctx).Model(&models.Message{}).Where("room_id = ?", roomID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(page)).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *GormMessageRepository) CreateUnseen(ctx context.Context, markers []models.UnseenMessage) error {
	if len(markers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&markers).Error
}

func (r *GormMessageRepository) MarkSeen(ctx context.Context, actor models.Actor, roomID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(actor)).
		Where("room_id = ?", roomID).
		Delete(&models.UnseenMessage{})
	return result.RowsAffected, result.Error
}

func (r *GormMessageRepository) UnseenCount(ctx context.Context, actor models.Actor, roomID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UnseenMessage{}).
		Scopes(database.OwnedBy(actor)).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}
