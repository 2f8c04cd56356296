package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/room-workflow-api/internal/constants"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"github.com/yukikurage/room-workflow-api/internal/utils"
	"gorm.io/gorm"
)

// MessageService handles room messages and their unseen markers
type MessageService struct {
	store *repository.Store
	queue queue.TaskQueue
	now   func() time.Time
}

// NewMessageService creates a new MessageService
func NewMessageService(store *repository.Store, q queue.TaskQueue) *MessageService {
	return &MessageService{
		store: store,
		queue: q,
		now:   time.Now,
	}
}

// PostMessage stores a message from a participant, marks it unseen for every
// other participant and schedules the Slack relay.
func (s *MessageService) PostMessage(ctx context.Context, actor models.Actor, roomID uint64, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	userID, freelancerID := actor.AuthorIDs()
	message := &models.Message{
		RoomID:       roomID,
		UserID:       userID,
		FreelancerID: freelancerID,
		Body:         body,
		MsgType:      models.MessageTypeText,
		Source:       models.MessageSourceWeb,
		CreatedAt:    s.now(),
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		room, err := findRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}

		participants, err := tx.Rooms.Participants(ctx, room)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		if !containsActor(participants, actor) {
			return ErrNotParticipant
		}

		return insertMessage(ctx, tx, room, participants, message)
	})
	if err != nil {
		return nil, err
	}

	enqueue(ctx, s.queue, queue.TypeSlackRelayOutbound, queue.RelayPayload{MessageID: message.ID})
	return message, nil
}

// MarkSeen clears the actor's unseen markers in the room. Nothing to clear is success.
func (s *MessageService) MarkSeen(ctx context.Context, actor models.Actor, roomID uint64) (int64, error) {
	if _, err := findRoom(ctx, s.store, roomID); err != nil {
		return 0, err
	}

	n, err := s.store.Messages.MarkSeen(ctx, actor, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages seen: %w", err)
	}
	return n, nil
}

// UnseenCount returns how many messages in the room the actor has not seen
func (s *MessageService) UnseenCount(ctx context.Context, actor models.Actor, roomID uint64) (int64, error) {
	if _, err := findRoom(ctx, s.store, roomID); err != nil {
		return 0, err
	}

	n, err := s.store.Messages.UnseenCount(ctx, actor, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unseen messages: %w", err)
	}
	return n, nil
}

// ListMessages returns a page of the room's messages, newest first, and marks
// the room seen for the actor.
func (s *MessageService) ListMessages(ctx context.Context, actor models.Actor, roomID uint64, page utils.PaginationParams) ([]models.Message, int64, error) {
	room, err := findRoom(ctx, s.store, roomID)
	if err != nil {
		return nil, 0, err
	}

	participants, err := s.store.Rooms.Participants(ctx, room)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load participants: %w", err)
	}
	if !containsActor(participants, actor) {
		return nil, 0, ErrNotParticipant
	}

	messages, total, err := s.store.Messages.List(ctx, roomID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	if _, err := s.store.Messages.MarkSeen(ctx, actor, roomID); err != nil {
		return nil, 0, fmt.Errorf("failed to mark messages seen: %w", err)
	}

	return messages, total, nil
}

// insertMessage writes message and one unseen marker per participant other
// than its author, then stamps the room. It must run inside tx's transaction.
func insertMessage(ctx context.Context, tx *repository.Store, room *models.Room, participants []models.Actor, message *models.Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.RoomID = room.ID

	author, hasAuthor := models.MessageAuthor(*message)
	if hasAuthor {
		prev, err := tx.Messages.LatestByAuthor(ctx, room.ID, author)
		switch {
		case err == nil:
			message.OneMinFromPrevious = message.CreatedAt.Sub(prev.CreatedAt) <= constants.MessageGroupingWindow
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load previous message: %w", err)
		}
	}

	if err := tx.Messages.Create(ctx, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	markers := make([]models.UnseenMessage, 0, len(participants))
	for _, p := range participants {
		if hasAuthor && p == author {
			continue
		}
		userID, freelancerID := p.AuthorIDs()
		markers = append(markers, models.UnseenMessage{
			MessageID:    message.ID,
			RoomID:       room.ID,
			UserID:       userID,
			FreelancerID: freelancerID,
			CreatedAt:    message.CreatedAt,
		})
	}
	if err := tx.Messages.CreateUnseen(ctx, markers); err != nil {
		return fmt.Errorf("failed to create unseen markers: %w", err)
	}

	if err := tx.Rooms.SetLastMessageAt(ctx, room.ID, message.CreatedAt); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return nil
}

func findRoom(ctx context.Context, store *repository.Store, roomID uint64) (*models.Room, error) {
	room, err := store.Rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return room, nil
}

func containsActor(actors []models.Actor, actor models.Actor) bool {
	for _, a := range actors {
		if a == actor {
			return true
		}
	}
	return false
}
