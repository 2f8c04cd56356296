package repository

import (
	"context"
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"gorm.io/gorm"
)

// GormSlackChannelRepository is a GORM implementation of SlackChannelRepository
type GormSlackChannelRepository struct {
	db *gorm.DB
}

// NewSlackChannelRepository creates a new SlackChannelRepository
func NewSlackChannelRepository(db *gorm.DB) SlackChannelRepository {
	return &GormSlackChannelRepository{db: db}
}

func (r *GormSlackChannelRepository) Create(ctx context.Context, channel *models.SlackChannel) error {
	if channel.BindingKey == "" {
		channel.BindingKey = models.SlackBindingKey(channel.RoomID, channel.FreelancerID)
	}
	return r.db.WithContext(ctx).Create(channel).Error
}

func (r *GormSlackChannelRepository) FindByID(ctx context.Context, id uint64) (*models.SlackChannel, error) {
	var channel models.SlackChannel
	if err := r.db.WithContext(ctx).First(&channel, id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *GormSlackChannelRepository) FindByKey(ctx context.Context, key string) (*models.SlackChannel, error) {
	var channel models.SlackChannel
	if err := r.db.WithContext(ctx).Where("binding_key = ?", key).First(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *GormSlackChannelRepository) FindByChannelID(ctx context.Context, channelID string) (*models.SlackChannel, error) {
	var channel models.SlackChannel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND room_id IS NOT NULL", channelID).
		Order("id ASC").
		First(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *GormSlackChannelRepository) ListByRoom(ctx context.Context, roomID uint64) ([]models.SlackChannel, error) {
	var channels []models.SlackChannel
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id ASC").Find(&channels).Error
	return channels, err
}

func (r *GormSlackChannelRepository) FindGigChannel(ctx context.Context, freelancerID uint64) (*models.SlackChannel, error) {
	var channel models.SlackChannel
	if err := r.db.WithContext(ctx).
		Where("freelancer_id = ? AND room_id IS NULL", freelancerID).
		First(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *GormSlackChannelRepository) Update(ctx context.Context, channel *models.SlackChannel) error {
	return r.db.WithContext(ctx).Save(channel).Error
}

// GormRelayMarkerRepository is a GORM implementation of RelayMarkerRepository
type GormRelayMarkerRepository struct {
	db *gorm.DB
}

// NewRelayMarkerRepository creates a new RelayMarkerRepository
func NewRelayMarkerRepository(db *gorm.DB) RelayMarkerRepository {
	return &GormRelayMarkerRepository{db: db}
}

func (r *GormRelayMarkerRepository) Create(ctx context.Context, marker *models.RelayMarker) error {
	return r.db.WithContext(ctx).Create(marker).Error
}

func (r *GormRelayMarkerRepository) Exists(ctx context.Context, channel, ts string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RelayMarker{}).
		Where("channel = ? AND ts = ?", channel, ts).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRelayMarkerRepository) PostedTo(ctx context.Context, messageID uint64, channel string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RelayMarker{}).
		Where("message_id = ? AND channel = ? AND direction = ?", messageID, channel, models.RelayDirectionOutbound).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRelayMarkerRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.RelayMarker{})
	return result.RowsAffected, result.Error
}
