package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories bound to one connection or transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Freelancers   FreelancerRepository
	Rooms         RoomRepository
	Assignments   AssignmentRepository
	Messages      MessageRepository
	SlackChannels SlackChannelRepository
	RelayMarkers  RelayMarkerRepository
}

// NewStore creates every GORM repository on db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Freelancers:   NewFreelancerRepository(db),
		Rooms:         NewRoomRepository(db),
		Assignments:   NewAssignmentRepository(db),
		Messages:      NewMessageRepository(db),
		SlackChannels: NewSlackChannelRepository(db),
		RelayMarkers:  NewRelayMarkerRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single transaction. Returning an
// error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
