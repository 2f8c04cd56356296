package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/room-workflow-api/internal/constants"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
	"gorm.io/gorm"
)

// FreelancerService handles freelancer account state and presence
type FreelancerService struct {
	store *repository.Store
	now   func() time.Time
}

// NewFreelancerService creates a new FreelancerService
func NewFreelancerService(store *repository.Store) *FreelancerService {
	return &FreelancerService{
		store: store,
		now:   time.Now,
	}
}

// Presence is a freelancer's online state
type Presence struct {
	FreelancerID uint64     `json:"freelancer_id"`
	Online       bool       `json:"online"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
}

// Delete removes a freelancer together with their assignments, ratings,
// Slack bindings, unseen markers and authored messages.
func (s *FreelancerService) Delete(ctx context.Context, actor models.Actor, freelancerID uint64) error {
	if !actor.IsFreelancer() || actor.ID != freelancerID {
		return ErrNotSelf
	}

	if err := s.store.Freelancers.DeleteWithCleanup(ctx, freelancerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFreelancerNotFound
		}
		return fmt.Errorf("failed to delete freelancer: %w", err)
	}

	logger.Info().Uint64("freelancer_id", freelancerID).Msg("freelancer deleted")
	return nil
}

// SetStatus switches the freelancer between live and pause
func (s *FreelancerService) SetStatus(ctx context.Context, actor models.Actor, freelancerID uint64, status models.FreelancerStatus) error {
	if status != models.FreelancerStatusLive && status != models.FreelancerStatusPause {
		return ErrInvalidFreelancerState
	}
	if !actor.IsFreelancer() || actor.ID != freelancerID {
		return ErrNotSelf
	}

	if err := s.store.Freelancers.SetStatus(ctx, freelancerID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFreelancerNotFound
		}
		return fmt.Errorf("failed to update freelancer status: %w", err)
	}
	return nil
}

// Touch records that the actor is active now
func (s *FreelancerService) Touch(ctx context.Context, actor models.Actor) error {
	now := s.now()
	var err error
	if actor.IsFreelancer() {
		err = s.store.Freelancers.Touch(ctx, actor.ID, now)
	} else {
		err = s.store.Users.Touch(ctx, actor.ID, now)
	}
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// Presence reports whether the freelancer was active within the online window
func (s *FreelancerService) Presence(ctx context.Context, freelancerID uint64) (*Presence, error) {
	freelancer, err := s.store.Freelancers.FindByID(ctx, freelancerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFreelancerNotFound
		}
		return nil, fmt.Errorf("failed to find freelancer: %w", err)
	}

	return &Presence{
		FreelancerID: freelancer.ID,
		Online:       freelancer.Online(s.now(), constants.OnlineWindow),
		LastSeenAt:   freelancer.LastSeenAt,
	}, nil
}
