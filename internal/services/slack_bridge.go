package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yukikurage/room-workflow-api/internal/config"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"github.com/yukikurage/room-workflow-api/internal/slack"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
	"gorm.io/gorm"
)

// SlackBridge keeps room conversations and their Slack channels in sync
type SlackBridge struct {
	store *repository.Store
	queue queue.TaskQueue
	api   slack.API
	cfg   config.SlackConfig
	now   func() time.Time
}

// NewSlackBridge creates a new SlackBridge; api may be nil when Slack is not configured
func NewSlackBridge(store *repository.Store, q queue.TaskQueue, api slack.API, cfg config.SlackConfig) *SlackBridge {
	return &SlackBridge{
		store: store,
		queue: q,
		api:   api,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Register installs the Slack task handlers on mux
func (b *SlackBridge) Register(mux *queue.Mux) {
	mux.Handle(queue.TypeSlackProvision, b.HandleProvision)
	mux.Handle(queue.TypeSlackRelayOutbound, b.HandleRelayOutbound)
}

// ProvisionChannel returns the binding for (room, freelancer), creating it on
// first use. A new binding schedules creation of the external channel. A
// freelancer must exist and, for a room binding, hold a non-rejected
// assignment to that room.
func (b *SlackBridge) ProvisionChannel(ctx context.Context, roomID, freelancerID *uint64) (*models.SlackChannel, error) {
	var owner *uint64
	if roomID != nil {
		room, err := findRoom(ctx, b.store, *roomID)
		if err != nil {
			return nil, err
		}
		owner = &room.UserID
	}
	if freelancerID != nil {
		if err := b.checkFreelancer(ctx, roomID, *freelancerID); err != nil {
			return nil, err
		}
	}

	key := models.SlackBindingKey(roomID, freelancerID)

	existing, err := b.store.SlackChannels.FindByKey(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find slack channel: %w", err)
	}

	channel := &models.SlackChannel{
		BindingKey:   key,
		RoomID:       roomID,
		FreelancerID: freelancerID,
		UserID:       owner,
		Status:       models.SlackChannelStatusPending,
	}

	if err := b.store.SlackChannels.Create(ctx, channel); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race; the winner's row is the binding
			return b.store.SlackChannels.FindByKey(ctx, key)
		}
		return nil, fmt.Errorf("failed to create slack channel: %w", err)
	}

	logger.Info().Str("binding", key).Uint64("slack_channel_id", channel.ID).Msg("slack channel binding created")
	enqueue(ctx, b.queue, queue.TypeSlackProvision, queue.ProvisionPayload{SlackChannelID: channel.ID})
	return channel, nil
}

func (b *SlackBridge) checkFreelancer(ctx context.Context, roomID *uint64, freelancerID uint64) error {
	if _, err := b.store.Freelancers.FindByID(ctx, freelancerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFreelancerNotFound
		}
		return fmt.Errorf("failed to find freelancer: %w", err)
	}
	if roomID == nil {
		return nil
	}

	assignment, err := b.store.Assignments.Find(ctx, freelancerID, *roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to find assignment: %w", err)
	}
	if assignment.Status == models.AssignmentStatusRejected {
		return ErrNotParticipant
	}
	return nil
}

// HandleProvision creates the external conversation for a pending binding
func (b *SlackBridge) HandleProvision(ctx context.Context, payload []byte) error {
	var task queue.ProvisionPayload
	if err := queue.Decode(payload, &task); err != nil {
		return err
	}

	channel, err := b.store.SlackChannels.FindByID(ctx, task.SlackChannelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return queue.Deferred(queue.TypeSlackProvision, err)
	}

	if channel.ChannelID == "" && channel.WebHookURL == "" {
		if b.api == nil {
			logger.Debug().Uint64("slack_channel_id", channel.ID).Msg("slack not configured, binding left pending")
			return nil
		}

		id, err := b.api.CreateChannel(ctx, channel.Token, b.channelName(channel))
		if err != nil {
			channel.Status = models.SlackChannelStatusFailed
			if saveErr := b.store.SlackChannels.Update(ctx, channel); saveErr != nil {
				logger.Error().Err(saveErr).Uint64("slack_channel_id", channel.ID).Msg("failed to record provisioning failure")
			}
			return queue.Deferred(queue.TypeSlackProvision, err)
		}
		channel.ChannelID = id
	}

	channel.Status = models.SlackChannelStatusActive
	channel.Sync = true
	if err := b.store.SlackChannels.Update(ctx, channel); err != nil {
		return queue.Deferred(queue.TypeSlackProvision, err)
	}

	logger.Info().Uint64("slack_channel_id", channel.ID).Str("channel", channel.ChannelID).Msg("slack channel provisioned")
	return nil
}

func (b *SlackBridge) channelName(channel *models.SlackChannel) string {
	var roomID, freelancerID uint64
	if channel.RoomID != nil {
		roomID = *channel.RoomID
	}
	if channel.FreelancerID != nil {
		freelancerID = *channel.FreelancerID
	}
	if roomID == 0 {
		return fmt.Sprintf("%s-gig-%d", b.cfg.ChannelPrefix, freelancerID)
	}
	return fmt.Sprintf("%s-%d-%d", b.cfg.ChannelPrefix, roomID, freelancerID)
}

// RelayInbound turns a Slack message into a room message. The (channel, ts)
// marker and the message commit together; a pair that already has a marker is
// an echo or a redelivery and yields ErrRelayEcho.
func (b *SlackBridge) RelayInbound(ctx context.Context, channelID, text, ts string) (*models.Message, error) {
	binding, err := b.store.SlackChannels.FindByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlackChannelNotFound
		}
		return nil, fmt.Errorf("failed to find slack channel: %w", err)
	}

	seen, err := b.store.RelayMarkers.Exists(ctx, channelID, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to check relay marker: %w", err)
	}
	if seen {
		return nil, ErrRelayEcho
	}

	message := &models.Message{
		Body:         text,
		MsgType:      models.MessageTypeText,
		Source:       models.MessageSourceSlack,
		SlackTS:      ts,
		SlackChannel: channelID,
		CreatedAt:    b.now(),
	}
	switch {
	case binding.FreelancerID != nil:
		message.FreelancerID = binding.FreelancerID
	case binding.UserID != nil:
		message.UserID = binding.UserID
	}

	err = b.store.Transaction(ctx, func(tx *repository.Store) error {
		room, err := findRoom(ctx, tx, *binding.RoomID)
		if err != nil {
			return err
		}
		participants, err := tx.Rooms.Participants(ctx, room)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		if err := insertMessage(ctx, tx, room, participants, message); err != nil {
			return err
		}

		marker := &models.RelayMarker{
			Channel:   channelID,
			TS:        ts,
			RoomID:    room.ID,
			MessageID: message.ID,
			Direction: models.RelayDirectionInbound,
		}
		if err := tx.RelayMarkers.Create(ctx, marker); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRelayEcho
			}
			return fmt.Errorf("failed to record relay marker: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint64("message_id", message.ID).Str("channel", channelID).Str("ts", ts).Msg("slack message relayed inbound")
	return message, nil
}

// RelayOutbound posts a room message to every synced binding of its room and
// records the returned ts so the echo is recognised. Messages that came from
// Slack are never sent back. Bindings that already carry an outbound marker for
// the message are skipped, so a retried task only posts where it failed.
func (b *SlackBridge) RelayOutbound(ctx context.Context, messageID uint64) error {
	message, err := b.store.Messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to find message: %w", err)
	}

	if message.SlackTS != "" {
		seen, err := b.store.RelayMarkers.Exists(ctx, message.SlackChannel, message.SlackTS)
		if err != nil {
			return fmt.Errorf("failed to check relay marker: %w", err)
		}
		if seen || message.Source == models.MessageSourceSlack {
			logger.Debug().Uint64("message_id", messageID).Msg("outbound relay skipped, message came from slack")
			return nil
		}
	}

	bindings, err := b.store.SlackChannels.ListByRoom(ctx, message.RoomID)
	if err != nil {
		return fmt.Errorf("failed to list slack channels: %w", err)
	}

	text := b.outboundText(ctx, message)
	var errs []error
	for _, binding := range bindings {
		if !binding.Relayable() || b.api == nil {
			continue
		}

		channel := binding.ChannelID
		if channel == "" {
			channel = webhookMarkerChannel(binding.ID)
		}
		posted, err := b.store.RelayMarkers.PostedTo(ctx, message.ID, channel)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to check relay marker: %w", err))
			continue
		}
		if posted {
			continue
		}

		var ts string
		if binding.ChannelID == "" {
			// incoming webhooks return no ts; the marker only records delivery
			err = b.api.PostWebhook(ctx, binding.WebHookURL, text)
			ts = fmt.Sprintf("message-%d", message.ID)
		} else {
			ts, err = b.api.PostMessage(ctx, binding.Token, binding.ChannelID, text)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}

		marker := &models.RelayMarker{
			Channel:   channel,
			TS:        ts,
			RoomID:    message.RoomID,
			MessageID: message.ID,
			Direction: models.RelayDirectionOutbound,
		}
		if err := b.store.RelayMarkers.Create(ctx, marker); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error().Err(err).Uint64("message_id", message.ID).Str("channel", channel).Msg("failed to record outbound relay marker")
		}
	}

	return errors.Join(errs...)
}

// webhookMarkerChannel names the marker channel of a webhook-only binding
func webhookMarkerChannel(bindingID uint64) string {
	return fmt.Sprintf("webhook-%d", bindingID)
}

// HandleRelayOutbound is the queue entry point for RelayOutbound
func (b *SlackBridge) HandleRelayOutbound(ctx context.Context, payload []byte) error {
	var task queue.RelayPayload
	if err := queue.Decode(payload, &task); err != nil {
		return err
	}

	err := b.RelayOutbound(ctx, task.MessageID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMessageNotFound):
		return nil
	default:
		err = queue.Deferred(queue.TypeSlackRelayOutbound, err)
		logger.Error().Err(err).Uint64("message_id", task.MessageID).Msg("outbound relay failed")
		return err
	}
}

func (b *SlackBridge) outboundText(ctx context.Context, message *models.Message) string {
	if message.IsSystem() {
		return message.Body
	}

	var name string
	if message.FreelancerID != nil {
		if f, err := b.store.Freelancers.FindByID(ctx, *message.FreelancerID); err == nil {
			name = f.FullName()
		}
	} else if message.UserID != nil {
		if u, err := b.store.Users.FindByID(ctx, *message.UserID); err == nil {
			name = u.FullName()
		}
	}
	if name == "" {
		return message.Body
	}
	return fmt.Sprintf("*%s*: %s", name, message.Body)
}

// PruneMarkers deletes relay markers older than the configured retention
func (b *SlackBridge) PruneMarkers(ctx context.Context) (int64, error) {
	cutoff := b.now().Add(-b.cfg.MarkerRetention)
	n, err := b.store.RelayMarkers.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune relay markers: %w", err)
	}
	if n > 0 {
		logger.Info().Int64("count", n).Time("cutoff", cutoff).Msg("relay markers pruned")
	}
	return n, nil
}

// SchedulePruning adds the marker pruning job to c
func (b *SlackBridge) SchedulePruning(c *cron.Cron) (cron.EntryID, error) {
	schedule := b.cfg.PruneSchedule
	if schedule == "" {
		schedule = "@every 1h"
	}
	return c.AddFunc(schedule, func() {
		if _, err := b.PruneMarkers(context.Background()); err != nil {
			logger.Error().Err(err).Msg("relay marker pruning failed")
		}
	})
}
