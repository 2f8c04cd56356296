package services

import (
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/internal/utils"
	"github.com/yukikurage/room-workflow-api/internal/workflow"
)

func (suite *ServiceTestSuite) TestPostMessage_UnseenForEveryoneButAuthor() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f1 := suite.createFreelancer("f1@example.com")
	f2 := suite.createFreelancer("f2@example.com")
	suite.assign(owner, f1, room)
	suite.assign(owner, f2, room)

	message, err := suite.messages.PostMessage(suite.ctx, models.FreelancerActor(f1.ID), room.ID, "  hello  ")
	suite.Require().NoError(err)
	suite.Equal("hello", message.Body)
	suite.Equal(models.MessageSourceWeb, message.Source)
	suite.Equal(f1.ID, *message.FreelancerID)
	suite.Nil(message.UserID)

	suite.Equal(int64(1), suite.unseen(models.UserActor(owner.ID), room.ID))
	suite.Equal(int64(1), suite.unseen(models.FreelancerActor(f2.ID), room.ID))
	suite.Equal(int64(0), suite.unseen(models.FreelancerActor(f1.ID), room.ID))

	n, err := suite.messages.MarkSeen(suite.ctx, models.UserActor(owner.ID), room.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
	suite.Equal(int64(0), suite.unseen(models.UserActor(owner.ID), room.ID))
	suite.Equal(int64(1), suite.unseen(models.FreelancerActor(f2.ID), room.ID))

	n, err = suite.messages.MarkSeen(suite.ctx, models.UserActor(owner.ID), room.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(0), n)

	var stamped models.Room
	suite.Require().NoError(suite.db.First(&stamped, room.ID).Error)
	suite.Require().NotNil(stamped.LastMessageCreatedAt)
	suite.True(stamped.LastMessageCreatedAt.Equal(suite.clock))

	relays := suite.queue.ofType(queue.TypeSlackRelayOutbound)
	suite.Require().Len(relays, 1)
	var payload queue.RelayPayload
	suite.Require().NoError(queue.Decode(relays[0].Payload, &payload))
	suite.Equal(message.ID, payload.MessageID)
}

func (suite *ServiceTestSuite) TestPostMessage_Rejections() {
	owner := suite.createUser("owner@example.com")
	stranger := suite.createUser("stranger@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	outsider := suite.createFreelancer("f2@example.com")
	suite.assign(owner, f, room)

	_, err := suite.messages.PostMessage(suite.ctx, models.UserActor(owner.ID), room.ID, "   ")
	suite.ErrorIs(err, ErrEmptyMessage)

	_, err = suite.messages.PostMessage(suite.ctx, models.UserActor(stranger.ID), room.ID, "hi")
	suite.ErrorIs(err, ErrNotParticipant)

	_, err = suite.messages.PostMessage(suite.ctx, models.FreelancerActor(outsider.ID), room.ID, "hi")
	suite.ErrorIs(err, ErrNotParticipant)

	_, err = suite.messages.PostMessage(suite.ctx, models.UserActor(owner.ID), 999, "hi")
	suite.ErrorIs(err, ErrRoomNotFound)

	var count int64
	suite.db.Model(&models.Message{}).Count(&count)
	suite.Equal(int64(0), count)
	suite.Empty(suite.queue.ofType(queue.TypeSlackRelayOutbound))
}

func (suite *ServiceTestSuite) TestPostMessage_RejectedFreelancerLosesAccess() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)

	_, err := suite.assignments.ApplyEvent(suite.ctx, models.FreelancerActor(f.ID), f.ID, room.ID, workflow.FreelancerRejects)
	suite.Require().NoError(err)

	_, err = suite.messages.PostMessage(suite.ctx, models.FreelancerActor(f.ID), room.ID, "still here?")
	suite.ErrorIs(err, ErrNotParticipant)

	_, err = suite.messages.PostMessage(suite.ctx, models.UserActor(owner.ID), room.ID, "anyone?")
	suite.Require().NoError(err)
	suite.Equal(int64(0), suite.unseen(models.FreelancerActor(f.ID), room.ID))
}

func (suite *ServiceTestSuite) TestPostMessage_GroupsWithinAMinute() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)
	client := models.UserActor(owner.ID)

	first, err := suite.messages.PostMessage(suite.ctx, client, room.ID, "one")
	suite.Require().NoError(err)
	suite.False(first.OneMinFromPrevious)

	suite.advance(30 * time.Second)
	second, err := suite.messages.PostMessage(suite.ctx, client, room.ID, "two")
	suite.Require().NoError(err)
	suite.True(second.OneMinFromPrevious)

	suite.advance(10 * time.Second)
	reply, err := suite.messages.PostMessage(suite.ctx, models.FreelancerActor(f.ID), room.ID, "reply")
	suite.Require().NoError(err)
	suite.False(reply.OneMinFromPrevious, "grouping is per author")

	suite.advance(2 * time.Minute)
	third, err := suite.messages.PostMessage(suite.ctx, client, room.ID, "three")
	suite.Require().NoError(err)
	suite.False(third.OneMinFromPrevious)
}

func (suite *ServiceTestSuite) TestListMessages_NewestFirstAndMarksSeen() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.assign(owner, f, room)

	for _, body := range []string{"a", "b", "c"} {
		_, err := suite.messages.PostMessage(suite.ctx, models.UserActor(owner.ID), room.ID, body)
		suite.Require().NoError(err)
		suite.advance(time.Minute)
	}
	suite.Equal(int64(3), suite.unseen(models.FreelancerActor(f.ID), room.ID))

	messages, total, err := suite.messages.ListMessages(suite.ctx, models.FreelancerActor(f.ID), room.ID, utils.PaginationParams{Page: 1, Limit: 2})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(messages, 2)
	suite.Equal("c", messages[0].Body)
	suite.Equal("b", messages[1].Body)
	suite.Equal(int64(0), suite.unseen(models.FreelancerActor(f.ID), room.ID))

	_, _, err = suite.messages.ListMessages(suite.ctx, models.UserActor(999), room.ID, utils.PaginationParams{Page: 1, Limit: 2})
	suite.ErrorIs(err, ErrNotParticipant)
}

func (suite *ServiceTestSuite) TestUnseenCount_MissingRoom() {
	_, err := suite.messages.UnseenCount(suite.ctx, models.UserActor(1), 42)
	suite.ErrorIs(err, ErrRoomNotFound)

	_, err = suite.messages.MarkSeen(suite.ctx, models.UserActor(1), 42)
	suite.ErrorIs(err, ErrRoomNotFound)
}
