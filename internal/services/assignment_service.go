package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/room-workflow-api/internal/constants"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"github.com/yukikurage/room-workflow-api/internal/utils"
	"github.com/yukikurage/room-workflow-api/internal/workflow"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
	"gorm.io/gorm"
)

// TaskAcceptedBody is the text of the system message posted when a freelancer accepts.
const TaskAcceptedBody = "The freelancer accepted the task."

// AssignmentService handles the freelancer/room assignment lifecycle
type AssignmentService struct {
	store         *repository.Store
	notifications *NotificationService
	bridge        *SlackBridge
	now           func() time.Time
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(store *repository.Store, notifications *NotificationService, bridge *SlackBridge) *AssignmentService {
	return &AssignmentService{
		store:         store,
		notifications: notifications,
		bridge:        bridge,
		now:           time.Now,
	}
}

// Assign creates a pending assignment of the freelancer to the room and
// schedules the freelancer's notification.
func (s *AssignmentService) Assign(ctx context.Context, actor models.Actor, freelancerID, roomID uint64) (*models.Assignment, error) {
	room, err := findRoom(ctx, s.store, roomID)
	if err != nil {
		return nil, err
	}
	if !actor.IsUser() || !room.IsClient(actor.ID) {
		return nil, ErrNotRoomClient
	}

	freelancer, err := s.store.Freelancers.FindByID(ctx, freelancerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFreelancerNotFound
		}
		return nil, fmt.Errorf("failed to find freelancer: %w", err)
	}
	if freelancer.Status != models.FreelancerStatusLive {
		return nil, ErrFreelancerPaused
	}

	if _, err := s.store.Assignments.Find(ctx, freelancerID, roomID); err == nil {
		return nil, ErrDuplicateAssignment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}

	assignment := &models.Assignment{
		FreelancerID: freelancerID,
		RoomID:       roomID,
	}
	if err := s.store.Assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAssignment
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	logger.Info().
		Uint64("assignment_id", assignment.ID).
		Uint64("room_id", roomID).
		Uint64("freelancer_id", freelancerID).
		Msg("freelancer assigned")

	s.notifications.NotifyAssignment(ctx, assignment)
	return assignment, nil
}

// Find returns the assignment of the freelancer to the room
func (s *AssignmentService) Find(ctx context.Context, freelancerID, roomID uint64) (*models.Assignment, error) {
	assignment, err := s.store.Assignments.Find(ctx, freelancerID, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// ApplyEvent moves the assignment through the status machine. The row is
// locked for the duration of the transaction and the write only lands if the
// status is still the one the transition was computed from.
func (s *AssignmentService) ApplyEvent(ctx context.Context, actor models.Actor, freelancerID, roomID uint64, event workflow.Event) (*models.Assignment, error) {
	if !workflow.ValidEvent(event) {
		return nil, fmt.Errorf("%w: %q", workflow.ErrUnknownEvent, event)
	}

	var assignment *models.Assignment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		room, err := findRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}

		role, ok := roleOf(actor, room, freelancerID)
		if !ok || !workflow.Permitted(role, event) {
			return ErrEventNotPermitted
		}

		current, err := tx.Assignments.FindForUpdate(ctx, freelancerID, roomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return fmt.Errorf("failed to find assignment: %w", err)
		}

		next, err := workflow.Transition(current.Status, event)
		if err != nil {
			return err
		}

		n, err := tx.Assignments.CompareAndSetStatus(ctx, current.ID, current.Status, next)
		if err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}
		if n == 0 {
			return ErrConcurrentTransition
		}
		current.Status = next

		if event == workflow.FreelancerAccepts {
			participants, err := tx.Rooms.Participants(ctx, room)
			if err != nil {
				return fmt.Errorf("failed to load participants: %w", err)
			}
			system := &models.Message{
				Body:      TaskAcceptedBody,
				MsgType:   models.MessageTypeTaskAccepted,
				Source:    models.MessageSourceWeb,
				CreatedAt: s.now(),
			}
			if err := insertMessage(ctx, tx, room, participants, system); err != nil {
				return err
			}
		}

		assignment = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Uint64("assignment_id", assignment.ID).
		Str("event", string(event)).
		Str("status", string(assignment.Status)).
		Str("actor", actor.String()).
		Msg("assignment transitioned")

	if event == workflow.FreelancerAccepts && s.bridge != nil {
		if _, err := s.bridge.ProvisionChannel(ctx, &roomID, &freelancerID); err != nil {
			logger.Warn().Err(err).Uint64("room_id", roomID).Uint64("freelancer_id", freelancerID).
				Msg("slack channel binding deferred")
		}
	}

	return assignment, nil
}

// ListRooms returns the freelancer's rooms in bucket
func (s *AssignmentService) ListRooms(ctx context.Context, freelancerID uint64, bucket workflow.Bucket, page utils.PaginationParams) ([]models.Room, int64, error) {
	rooms, total, err := s.store.Rooms.ListForFreelancer(ctx, freelancerID, workflow.BucketStatuses(bucket), page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, total, nil
}

// JustAccepted reports whether the room sits in the freelancer's accepted
// bucket and its latest message is the acceptance notice.
func (s *AssignmentService) JustAccepted(ctx context.Context, freelancerID, roomID uint64) (bool, error) {
	assignment, err := s.Find(ctx, freelancerID, roomID)
	if err != nil {
		return false, err
	}
	if !workflow.InBucket(assignment.Status, workflow.BucketAccepted) {
		return false, nil
	}

	latest, err := s.store.Messages.Latest(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load latest message: %w", err)
	}
	return latest.IsTaskAccepted(), nil
}

// RateFreelancer records the room client's rating of a completed assignment
func (s *AssignmentService) RateFreelancer(ctx context.Context, actor models.Actor, freelancerID, roomID uint64, rate int) (*models.FreelancerRate, error) {
	if rate < constants.MinRate || rate > constants.MaxRate {
		return nil, ErrInvalidRate
	}

	room, err := findRoom(ctx, s.store, roomID)
	if err != nil {
		return nil, err
	}
	if !actor.IsUser() || !room.IsClient(actor.ID) {
		return nil, ErrNotRoomClient
	}

	assignment, err := s.Find(ctx, freelancerID, roomID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != models.AssignmentStatusCompleted {
		return nil, ErrAssignmentNotCompleted
	}

	record := &models.FreelancerRate{
		AssignmentID: assignment.ID,
		FreelancerID: freelancerID,
		RoomID:       roomID,
		UserID:       actor.ID,
		Rate:         rate,
	}
	if err := s.store.Assignments.CreateRate(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("failed to save rate: %w", err)
	}
	return record, nil
}

func roleOf(actor models.Actor, room *models.Room, freelancerID uint64) (workflow.Role, bool) {
	switch {
	case actor.IsFreelancer() && actor.ID == freelancerID:
		return workflow.RoleFreelancer, true
	case actor.IsUser() && room.IsClient(actor.ID):
		return workflow.RoleClient, true
	}
	return "", false
}
