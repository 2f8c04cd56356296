package repository

import (
	"context"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

func (r *GormAssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.Status = models.AssignmentStatusPending
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *GormAssignmentRepository) Find(ctx context.Context, freelancerID, roomID uint64) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Where("freelancer_id = ? AND room_id = ?", freelancerID, roomID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormAssignmentRepository) FindForUpdate(ctx context.Context, freelancerID, roomID uint64) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("freelancer_id = ? AND room_id = ?", freelancerID, roomID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormAssignmentRepository) CompareAndSetStatus(ctx context.Context, id uint64, from, to models.AssignmentStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *GormAssignmentRepository) ListByRoom(ctx context.Context, roomID uint64) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id ASC").
		Preload("Freelancer").
		Find(&assignments).Error
	return assignments, err
}

func (r *GormAssignmentRepository) CreateRate(ctx context.Context, rate *models.FreelancerRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *GormAssignmentRepository) FindRate(ctx context.Context, assignmentID uint64) (*models.FreelancerRate, error) {
	var rate models.FreelancerRate
	if err := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}
