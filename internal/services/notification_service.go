package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"github.com/yukikurage/room-workflow-api/internal/slack"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService tells freelancers about new assignments by email and in
// their gig Slack channel. Delivery happens on the task queue.
type NotificationService struct {
	store   *repository.Store
	queue   queue.TaskQueue
	mailer  Mailer
	slack   slack.API
	baseURL string
}

// NewNotificationService creates a new NotificationService; mailer and api may be nil
func NewNotificationService(store *repository.Store, q queue.TaskQueue, mailer Mailer, api slack.API, baseURL string) *NotificationService {
	return &NotificationService{
		store:   store,
		queue:   q,
		mailer:  mailer,
		slack:   api,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Register installs the notification task handler on mux
func (s *NotificationService) Register(mux *queue.Mux) {
	mux.Handle(queue.TypeAssignmentNotification, s.HandleAssignmentNotification)
}

// NotifyAssignment enqueues exactly one notification task and returns. A
// failure to enqueue is logged and reported as deferred delivery.
func (s *NotificationService) NotifyAssignment(ctx context.Context, assignment *models.Assignment) error {
	return enqueue(ctx, s.queue, queue.TypeAssignmentNotification, queue.AssignmentPayload{
		AssignmentID: assignment.ID,
		FreelancerID: assignment.FreelancerID,
		RoomID:       assignment.RoomID,
	})
}

// HandleAssignmentNotification delivers one assignment notification
func (s *NotificationService) HandleAssignmentNotification(ctx context.Context, payload []byte) error {
	var task queue.AssignmentPayload
	if err := queue.Decode(payload, &task); err != nil {
		return err
	}

	freelancer, err := s.store.Freelancers.FindByID(ctx, task.FreelancerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Uint64("freelancer_id", task.FreelancerID).Msg("notification dropped, freelancer gone")
			return nil
		}
		return queue.Deferred(queue.TypeAssignmentNotification, err)
	}

	room, err := s.store.Rooms.FindByID(ctx, task.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Uint64("room_id", task.RoomID).Msg("notification dropped, room gone")
			return nil
		}
		return queue.Deferred(queue.TypeAssignmentNotification, err)
	}

	subject, body := s.assignmentText(freelancer, room)
	var errs []error

	if s.mailer != nil && freelancer.Email != "" {
		if err := s.mailer.Send(ctx, freelancer.Email, subject, body); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.postGigChannel(ctx, freelancer.ID, body); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		err = queue.Deferred(queue.TypeAssignmentNotification, err)
		logger.Error().Err(err).Uint64("assignment_id", task.AssignmentID).Msg("assignment notification failed")
		return err
	}

	logger.Info().Uint64("assignment_id", task.AssignmentID).Msg("assignment notification delivered")
	return nil
}

func (s *NotificationService) postGigChannel(ctx context.Context, freelancerID uint64, text string) error {
	if s.slack == nil {
		return nil
	}

	channel, err := s.store.SlackChannels.FindGigChannel(ctx, freelancerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !channel.Relayable() {
		return nil
	}

	if channel.ChannelID != "" {
		_, err = s.slack.PostMessage(ctx, channel.Token, channel.ChannelID, text)
		return err
	}
	return s.slack.PostWebhook(ctx, channel.WebHookURL, text)
}

func (s *NotificationService) assignmentText(freelancer *models.Freelancer, room *models.Room) (string, string) {
	subject := "You have been invited to a new project"
	if room.CategoryName != "" {
		subject = fmt.Sprintf("You have been invited to a %s project", room.CategoryName)
	}

	var body strings.Builder
	name := freelancer.FullName()
	if name == "" {
		name = freelancer.Username
	}
	fmt.Fprintf(&body, "Hi %s,\n\nA client has assigned you to a project", name)
	if room.Description != "" {
		fmt.Fprintf(&body, ":\n\n%s\n", room.Description)
	} else {
		body.WriteString(".\n")
	}
	if s.baseURL != "" {
		fmt.Fprintf(&body, "\nAccept or decline it here: %s/rooms/%d\n", s.baseURL, room.ID)
	}
	return subject, body.String()
}
