package database

import (
	"fmt"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
	"gorm.io/gorm"
)

// AddIndexes creates the composite indexes the hot queries rely on.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// unseen badge lookups per recipient
		{&models.UnseenMessage{}, "unseen_messages", "idx_unseen_room_user", "room_id, user_id"},
		{&models.UnseenMessage{}, "unseen_messages", "idx_unseen_room_freelancer", "room_id, freelancer_id"},

		// latest message in a room
		{&models.Message{}, "messages", "idx_messages_room_created", "room_id, created_at"},

		// freelancer room buckets
		{&models.Assignment{}, "freelancers_rooms", "idx_assignments_freelancer_status", "freelancer_id, status"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			logger.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Info().Str("index", idx.name).Str("table", idx.table).Msg("created index")
	}

	return nil
}

// MigrateDatabase auto-migrates every model and adds the composite indexes.
func MigrateDatabase(db *gorm.DB) error {
	logger.Info().Msg("running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	logger.Info().Msg("database migrations completed")
	return nil
}
