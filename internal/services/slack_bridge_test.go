package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yukikurage/room-workflow-api/internal/config"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/internal/workflow"
)

func (suite *ServiceTestSuite) payload(v interface{}) []byte {
	data, err := json.Marshal(v)
	suite.Require().NoError(err)
	return data
}

// activeBinding provisions and activates the Slack channel of (room, freelancer),
// assigning the freelancer first when needed
func (suite *ServiceTestSuite) activeBinding(room *models.Room, f *models.Freelancer) *models.SlackChannel {
	if _, err := suite.store.Assignments.Find(suite.ctx, f.ID, room.ID); err != nil {
		suite.assign(&models.User{ID: room.UserID}, f, room)
	}

	channel, err := suite.bridge.ProvisionChannel(suite.ctx, &room.ID, &f.ID)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.bridge.HandleProvision(suite.ctx, suite.payload(queue.ProvisionPayload{SlackChannelID: channel.ID})))

	active, err := suite.store.SlackChannels.FindByID(suite.ctx, channel.ID)
	suite.Require().NoError(err)
	return active
}

func (suite *ServiceTestSuite) TestProvisionChannel_Idempotent() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)

	first, err := suite.bridge.ProvisionChannel(suite.ctx, &room.ID, &f.ID)
	suite.Require().NoError(err)
	second, err := suite.bridge.ProvisionChannel(suite.ctx, &room.ID, &f.ID)
	suite.Require().NoError(err)

	suite.Equal(first.ID, second.ID)
	suite.Equal(models.SlackChannelStatusPending, first.Status)
	suite.Equal(owner.ID, *first.UserID)
	suite.Len(suite.queue.ofType(queue.TypeSlackProvision), 1)

	_, err = suite.bridge.ProvisionChannel(suite.ctx, new(uint64), &f.ID)
	suite.ErrorIs(err, ErrRoomNotFound)
}

func (suite *ServiceTestSuite) TestProvisionChannel_RequiresAssignedFreelancer() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	stranger := suite.createFreelancer("f2@example.com")
	ghost := uint64(999)

	_, err := suite.bridge.ProvisionChannel(suite.ctx, &room.ID, &ghost)
	suite.ErrorIs(err, ErrFreelancerNotFound)
	_, err = suite.bridge.ProvisionChannel(suite.ctx, nil, &ghost)
	suite.ErrorIs(err, ErrFreelancerNotFound)

	_, err = suite.bridge.ProvisionChannel(suite.ctx, &room.ID, &stranger.ID)
	suite.ErrorIs(err, ErrAssignmentNotFound)

	suite.assign(owner, f, room)
	_, err = suite.assignments.ApplyEvent(suite.ctx, models.FreelancerActor(f.ID), f.ID, room.ID, workflow.FreelancerRejects)
	suite.Require().NoError(err)
	_, err = suite.bridge.ProvisionChannel(suite.ctx, &room.ID, &f.ID)
	suite.ErrorIs(err, ErrNotParticipant)

	var bindings int64
	suite.db.Model(&models.SlackChannel{}).Count(&bindings)
	suite.Equal(int64(0), bindings)
	suite.Empty(suite.queue.ofType(queue.TypeSlackProvision))
}

func (suite *ServiceTestSuite) TestHandleProvision_CreatesChannel() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")

	binding := suite.activeBinding(room, f)
	suite.Equal(models.SlackChannelStatusActive, binding.Status)
	suite.True(binding.Sync)
	suite.Equal("C001", binding.ChannelID)
	suite.Require().Len(suite.slack.created, 1)
	suite.Equal(fmt.Sprintf("room-%d-%d", room.ID, f.ID), suite.slack.created[0])

	gig, err := suite.bridge.ProvisionChannel(suite.ctx, nil, &f.ID)
	suite.Require().NoError(err)
	suite.Nil(gig.UserID)
	suite.Require().NoError(suite.bridge.HandleProvision(suite.ctx, suite.payload(queue.ProvisionPayload{SlackChannelID: gig.ID})))
	suite.Equal(fmt.Sprintf("room-gig-%d", f.ID), suite.slack.created[1])

	// a binding that disappeared is not retried
	suite.NoError(suite.bridge.HandleProvision(suite.ctx, suite.payload(queue.ProvisionPayload{SlackChannelID: 999})))
}

func (suite *ServiceTestSuite) TestHandleProvision_FailureIsDeferred() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)

	channel, err := suite.bridge.ProvisionChannel(suite.ctx, &room.ID, &f.ID)
	suite.Require().NoError(err)

	suite.slack.err = errBoom
	err = suite.bridge.HandleProvision(suite.ctx, suite.payload(queue.ProvisionPayload{SlackChannelID: channel.ID}))
	suite.ErrorIs(err, queue.ErrDeliveryDeferred)
	suite.ErrorIs(err, errBoom)

	failed, err := suite.store.SlackChannels.FindByID(suite.ctx, channel.ID)
	suite.Require().NoError(err)
	suite.Equal(models.SlackChannelStatusFailed, failed.Status)
	suite.False(failed.Sync)
}

func (suite *ServiceTestSuite) TestHandleProvision_WithoutSlackLeavesPending() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)

	bridge := NewSlackBridge(suite.store, suite.queue, nil, config.Default().Slack)
	channel, err := bridge.ProvisionChannel(suite.ctx, &room.ID, &f.ID)
	suite.Require().NoError(err)
	suite.NoError(bridge.HandleProvision(suite.ctx, suite.payload(queue.ProvisionPayload{SlackChannelID: channel.ID})))

	pending, err := suite.store.SlackChannels.FindByID(suite.ctx, channel.ID)
	suite.Require().NoError(err)
	suite.Equal(models.SlackChannelStatusPending, pending.Status)
}

func (suite *ServiceTestSuite) TestHandleProvision_MalformedPayload() {
	err := suite.bridge.HandleProvision(suite.ctx, []byte("{"))
	suite.ErrorIs(err, queue.ErrMalformedPayload)
}

func (suite *ServiceTestSuite) TestRelayInbound_CreatesMessageOnce() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)
	binding := suite.activeBinding(room, f)

	message, err := suite.bridge.RelayInbound(suite.ctx, binding.ChannelID, "from slack", "1700000100.000001")
	suite.Require().NoError(err)
	suite.Equal(models.MessageSourceSlack, message.Source)
	suite.Equal("1700000100.000001", message.SlackTS)
	suite.Equal(f.ID, *message.FreelancerID)
	suite.Equal(room.ID, message.RoomID)
	suite.Equal(int64(1), suite.unseen(models.UserActor(owner.ID), room.ID))

	_, err = suite.bridge.RelayInbound(suite.ctx, binding.ChannelID, "from slack", "1700000100.000001")
	suite.ErrorIs(err, ErrRelayEcho)

	var count int64
	suite.db.Model(&models.Message{}).Count(&count)
	suite.Equal(int64(1), count)

	_, err = suite.bridge.RelayInbound(suite.ctx, "CUNKNOWN", "hi", "1700000100.000002")
	suite.ErrorIs(err, ErrSlackChannelNotFound)
}

func (suite *ServiceTestSuite) TestRelayOutbound_PostsAndBreaksEchoLoop() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)
	binding := suite.activeBinding(room, f)

	message, err := suite.messages.PostMessage(suite.ctx, models.UserActor(owner.ID), room.ID, "hello")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.bridge.HandleRelayOutbound(suite.ctx, suite.payload(queue.RelayPayload{MessageID: message.ID})))
	suite.Require().Len(suite.slack.posts, 1)
	post := suite.slack.posts[0]
	suite.Equal(binding.ChannelID, post.Channel)
	suite.Equal("*Client o*: hello", post.Text)

	exists, err := suite.store.RelayMarkers.Exists(suite.ctx, binding.ChannelID, "1700000000.000001")
	suite.Require().NoError(err)
	suite.True(exists)

	// Slack delivers our own post back as an event
	_, err = suite.bridge.RelayInbound(suite.ctx, binding.ChannelID, post.Text, "1700000000.000001")
	suite.ErrorIs(err, ErrRelayEcho)

	var count int64
	suite.db.Model(&models.Message{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *ServiceTestSuite) TestRelayOutbound_SkipsInboundMessages() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)
	binding := suite.activeBinding(room, f)

	message, err := suite.bridge.RelayInbound(suite.ctx, binding.ChannelID, "from slack", "1700000100.000001")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.bridge.RelayOutbound(suite.ctx, message.ID))
	suite.Empty(suite.slack.posts)
}

func (suite *ServiceTestSuite) TestRelayOutbound_Webhook() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)

	hook := &models.SlackChannel{
		RoomID:     &room.ID,
		UserID:     &owner.ID,
		WebHookURL: "https://hooks.slack.test/T1/B1",
		Status:     models.SlackChannelStatusActive,
		Sync:       true,
	}
	suite.Require().NoError(suite.store.SlackChannels.Create(suite.ctx, hook))

	paused := &models.SlackChannel{
		RoomID:       &room.ID,
		FreelancerID: &f.ID,
		ChannelID:    "CPAUSED",
	}
	suite.Require().NoError(suite.store.SlackChannels.Create(suite.ctx, paused))

	message, err := suite.messages.PostMessage(suite.ctx, models.FreelancerActor(f.ID), room.ID, "done")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.bridge.RelayOutbound(suite.ctx, message.ID))

	suite.Require().Len(suite.slack.posts, 1)
	suite.Equal(hook.WebHookURL, suite.slack.posts[0].Webhook)
	suite.Equal("*Free f1*: done", suite.slack.posts[0].Text)

	var markers int64
	suite.db.Model(&models.RelayMarker{}).Count(&markers)
	suite.Equal(int64(1), markers)

	suite.Require().NoError(suite.bridge.RelayOutbound(suite.ctx, message.ID))
	suite.Len(suite.slack.posts, 1)
}

func (suite *ServiceTestSuite) TestRelayOutbound_RetryPostsOnlyWhereItFailed() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f1 := suite.createFreelancer("f1@example.com")
	f2 := suite.createFreelancer("f2@example.com")
	suite.assign(owner, f1, room)
	suite.assign(owner, f2, room)
	first := suite.activeBinding(room, f1)
	second := suite.activeBinding(room, f2)

	message, err := suite.messages.PostMessage(suite.ctx, models.UserActor(owner.ID), room.ID, "hello")
	suite.Require().NoError(err)

	suite.slack.failing = second.ChannelID
	err = suite.bridge.HandleRelayOutbound(suite.ctx, suite.payload(queue.RelayPayload{MessageID: message.ID}))
	suite.ErrorIs(err, queue.ErrDeliveryDeferred)
	suite.Require().Len(suite.slack.posts, 1)
	suite.Equal(first.ChannelID, suite.slack.posts[0].Channel)

	suite.slack.failing = ""
	suite.Require().NoError(suite.bridge.HandleRelayOutbound(suite.ctx, suite.payload(queue.RelayPayload{MessageID: message.ID})))
	suite.Require().Len(suite.slack.posts, 2)
	suite.Equal(second.ChannelID, suite.slack.posts[1].Channel)

	suite.Require().NoError(suite.bridge.RelayOutbound(suite.ctx, message.ID))
	suite.Len(suite.slack.posts, 2)
}

func (suite *ServiceTestSuite) TestHandleRelayOutbound_Errors() {
	suite.NoError(suite.bridge.HandleRelayOutbound(suite.ctx, suite.payload(queue.RelayPayload{MessageID: 404})))
	suite.ErrorIs(suite.bridge.RelayOutbound(suite.ctx, 404), ErrMessageNotFound)

	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)
	suite.activeBinding(room, f)

	message, err := suite.messages.PostMessage(suite.ctx, models.UserActor(owner.ID), room.ID, "hello")
	suite.Require().NoError(err)

	suite.slack.err = errBoom
	err = suite.bridge.HandleRelayOutbound(suite.ctx, suite.payload(queue.RelayPayload{MessageID: message.ID}))
	suite.ErrorIs(err, queue.ErrDeliveryDeferred)
}

func (suite *ServiceTestSuite) TestPruneMarkers() {
	old := &models.RelayMarker{
		Channel:   "C001",
		TS:        "1.1",
		RoomID:    1,
		Direction: models.RelayDirectionOutbound,
		CreatedAt: suite.clock.Add(-8 * 24 * time.Hour),
	}
	fresh := &models.RelayMarker{
		Channel:   "C001",
		TS:        "1.2",
		RoomID:    1,
		Direction: models.RelayDirectionInbound,
		CreatedAt: suite.clock.Add(-time.Hour),
	}
	suite.Require().NoError(suite.store.RelayMarkers.Create(suite.ctx, old))
	suite.Require().NoError(suite.store.RelayMarkers.Create(suite.ctx, fresh))

	n, err := suite.bridge.PruneMarkers(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	exists, err := suite.store.RelayMarkers.Exists(suite.ctx, "C001", "1.2")
	suite.Require().NoError(err)
	suite.True(exists)
	exists, err = suite.store.RelayMarkers.Exists(suite.ctx, "C001", "1.1")
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *ServiceTestSuite) TestSchedulePruning() {
	c := cron.New()
	_, err := suite.bridge.SchedulePruning(c)
	suite.Require().NoError(err)
	suite.Len(c.Entries(), 1)

	cfg := config.Default().Slack
	cfg.PruneSchedule = "whenever"
	_, err = NewSlackBridge(suite.store, suite.queue, suite.slack, cfg).SchedulePruning(c)
	suite.Error(err)
}
