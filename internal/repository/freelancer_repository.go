package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"gorm.io/gorm"
)

// GormFreelancerRepository is a GORM implementation of FreelancerRepository
type GormFreelancerRepository struct {
	db *gorm.DB
}

// NewFreelancerRepository creates a new FreelancerRepository
func NewFreelancerRepository(db *gorm.DB) FreelancerRepository {
	return &GormFreelancerRepository{db: db}
}

func (r *GormFreelancerRepository) Create(ctx context.Context, freelancer *models.Freelancer) error {
	return r.db.WithContext(ctx).Create(freelancer).Error
}

func (r *GormFreelancerRepository) FindByID(ctx context.Context, id uint64) (*models.Freelancer, error) {
	var freelancer models.Freelancer
	if err := r.db.WithContext(ctx).First(&freelancer, id).Error; err != nil {
		return nil, err
	}
	return &freelancer, nil
}

func (r *GormFreelancerRepository) SetStatus(ctx context.Context, id uint64, status models.FreelancerStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Freelancer{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormFreelancerRepository) Touch(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Freelancer{}).
		Where("id = ?", id).
		Update("last_seen_at", at).Error
}

// DeleteWithCleanup removes, in order: unseen markers addressed to or produced
// by the freelancer, ratings, assignments, Slack bindings, authored messages
// (soft) and finally the freelancer.
func (r *GormFreelancerRepository) DeleteWithCleanup(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var freelancer models.Freelancer
		if err := tx.First(&freelancer, id).Error; err != nil {
			return err
		}

		authored := tx.Model(&models.Message{}).Select("id").Where("freelancer_id = ?", id)
		if err := tx.Where("freelancer_id = ? OR message_id IN (?)", id, authored).
			Delete(&models.UnseenMessage{}).Error; err != nil {
			return fmt.Errorf("unseen messages: %w", err)
		}

		if err := tx.Where("freelancer_id = ?", id).Delete(&models.FreelancerRate{}).Error; err != nil {
			return fmt.Errorf("rates: %w", err)
		}

		if err := tx.Where("freelancer_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return fmt.Errorf("assignments: %w", err)
		}

		if err := tx.Where("freelancer_id = ?", id).Delete(&models.SlackChannel{}).Error; err != nil {
			return fmt.Errorf("slack channels: %w", err)
		}

		if err := tx.Where("freelancer_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("messages: %w", err)
		}

		return tx.Delete(&freelancer).Error
	})
}
