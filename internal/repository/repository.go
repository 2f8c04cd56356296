package repository

import (
	"context"
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/utils"
)

// UserRepository defines the interface for client/manager data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	Touch(ctx context.Context, id uint64, at time.Time) error
}

// FreelancerRepository defines the interface for freelancer data access
type FreelancerRepository interface {
	Create(ctx context.Context, freelancer *models.Freelancer) error
	FindByID(ctx context.Context, id uint64) (*models.Freelancer, error)

	// SetStatus switches a freelancer between live and pause
	SetStatus(ctx context.Context, id uint64, status models.FreelancerStatus) error

	// Touch records activity for presence
	Touch(ctx context.Context, id uint64, at time.Time) error

	// DeleteWithCleanup removes the freelancer and every row that references them
	DeleteWithCleanup(ctx context.Context, id uint64) error
}

// RoomRepository defines the interface for room data access
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint64) (*models.Room, error)

	// Participants returns the owner, the manager and every non-rejected freelancer
	Participants(ctx context.Context, room *models.Room) ([]models.Actor, error)

	// SetLastMessageAt stamps the room with its latest message time
	SetLastMessageAt(ctx context.Context, roomID uint64, at time.Time) error

	// ListForFreelancer lists rooms where the freelancer's assignment status is one of statuses
	ListForFreelancer(ctx context.Context, freelancerID uint64, statuses []models.AssignmentStatus, page utils.PaginationParams) ([]models.Room, int64, error)
}

// AssignmentRepository defines the interface for assignment data access
type AssignmentRepository interface {
	// Create inserts a pending assignment; a second row for the same pair fails with gorm.ErrDuplicatedKey
	Create(ctx context.Context, assignment *models.Assignment) error

	Find(ctx context.Context, freelancerID, roomID uint64) (*models.Assignment, error)

	// FindForUpdate reads the assignment holding a row lock until the surrounding transaction ends
	FindForUpdate(ctx context.Context, freelancerID, roomID uint64) (*models.Assignment, error)

	// CompareAndSetStatus moves the assignment to `to` only if it is still in `from`
	CompareAndSetStatus(ctx context.Context, id uint64, from, to models.AssignmentStatus) (int64, error)

	ListByRoom(ctx context.Context, roomID uint64) ([]models.Assignment, error)

	CreateRate(ctx context.Context, rate *models.FreelancerRate) error
	FindRate(ctx context.Context, assignmentID uint64) (*models.FreelancerRate, error)
}

// MessageRepository defines the interface for messages and unseen markers
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint64) (*models.Message, error)
	Update(ctx context.Context, message *models.Message) error

	// Latest returns the most recent message of a room
	Latest(ctx context.Context, roomID uint64) (*models.Message, error)

	// LatestByAuthor returns the most recent message the actor wrote in the room
	LatestByAuthor(ctx context.Context, roomID uint64, author models.Actor) (*models.Message, error)

	List(ctx context.Context, roomID uint64, page utils.PaginationParams) ([]models.Message, int64, error)

	// CreateUnseen inserts the markers in one batch
	CreateUnseen(ctx context.Context, markers []models.UnseenMessage) error

	// MarkSeen deletes the actor's markers in the room and returns how many went
	MarkSeen(ctx context.Context, actor models.Actor, roomID uint64) (int64, error)

	UnseenCount(ctx context.Context, actor models.Actor, roomID uint64) (int64, error)
}

// SlackChannelRepository defines the interface for Slack channel bindings
type SlackChannelRepository interface {
	// Create inserts a binding; a second row for the same key fails with gorm.ErrDuplicatedKey
	Create(ctx context.Context, channel *models.SlackChannel) error
	FindByID(ctx context.Context, id uint64) (*models.SlackChannel, error)
	FindByKey(ctx context.Context, key string) (*models.SlackChannel, error)
	FindByChannelID(ctx context.Context, channelID string) (*models.SlackChannel, error)

	// ListByRoom returns every binding attached to the room
	ListByRoom(ctx context.Context, roomID uint64) ([]models.SlackChannel, error)

	// FindGigChannel returns the freelancer's binding that has no room
	FindGigChannel(ctx context.Context, freelancerID uint64) (*models.SlackChannel, error)

	Update(ctx context.Context, channel *models.SlackChannel) error
}

// RelayMarkerRepository defines the interface for Slack relay history
type RelayMarkerRepository interface {
	// Create inserts a marker; an existing (channel, ts) fails with gorm.ErrDuplicatedKey
	Create(ctx context.Context, marker *models.RelayMarker) error
	Exists(ctx context.Context, channel, ts string) (bool, error)
	// PostedTo reports whether message already has an outbound marker in channel
	PostedTo(ctx context.Context, messageID uint64, channel string) (bool, error)

	// PruneBefore deletes markers created before cutoff
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
