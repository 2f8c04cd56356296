package services

import (
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/queue"
)

func (suite *ServiceTestSuite) gigChannel(f *models.Freelancer) *models.SlackChannel {
	gig := &models.SlackChannel{
		FreelancerID: &f.ID,
		ChannelID:    "CGIG",
		Token:        "xoxb-gig",
		Status:       models.SlackChannelStatusActive,
		Sync:         true,
	}
	suite.Require().NoError(suite.store.SlackChannels.Create(suite.ctx, gig))
	return gig
}

func (suite *ServiceTestSuite) TestHandleAssignmentNotification_EmailAndGigChannel() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.gigChannel(f)
	a := suite.assign(owner, f, room)

	tasks := suite.queue.ofType(queue.TypeAssignmentNotification)
	suite.Require().Len(tasks, 1)
	suite.Require().NoError(suite.notifications.HandleAssignmentNotification(suite.ctx, tasks[0].Payload))

	suite.Require().Len(suite.mailer.sent, 1)
	mail := suite.mailer.sent[0]
	suite.Equal(f.Email, mail.To)
	suite.Equal("You have been invited to a Design project", mail.Subject)
	suite.Contains(mail.Body, "Hi Free f1")
	suite.Contains(mail.Body, "A new logo")
	suite.Contains(mail.Body, "https://rooms.example.com/rooms/")

	suite.Require().Len(suite.slack.posts, 1)
	suite.Equal("CGIG", suite.slack.posts[0].Channel)
	suite.Equal("xoxb-gig", suite.slack.posts[0].Token)
	suite.Equal(mail.Body, suite.slack.posts[0].Text)
	suite.NotZero(a.ID)
}

func (suite *ServiceTestSuite) TestHandleAssignmentNotification_FailureIsDeferred() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	suite.gigChannel(f)
	suite.assign(owner, f, room)

	suite.mailer.err = errBoom
	tasks := suite.queue.ofType(queue.TypeAssignmentNotification)
	suite.Require().Len(tasks, 1)

	err := suite.notifications.HandleAssignmentNotification(suite.ctx, tasks[0].Payload)
	suite.ErrorIs(err, queue.ErrDeliveryDeferred)
	suite.ErrorIs(err, errBoom)
	// the gig post still went out
	suite.Len(suite.slack.posts, 1)

	// the assignment is unaffected
	found, err := suite.assignments.Find(suite.ctx, f.ID, room.ID)
	suite.Require().NoError(err)
	suite.Equal(models.AssignmentStatusPending, found.Status)
}

func (suite *ServiceTestSuite) TestHandleAssignmentNotification_GoneTargetsAreDropped() {
	payload := queue.AssignmentPayload{AssignmentID: 1, FreelancerID: 404, RoomID: 404}
	suite.NoError(suite.notifications.HandleAssignmentNotification(suite.ctx, suite.payload(payload)))

	f := suite.createFreelancer("f1@example.com")
	payload.FreelancerID = f.ID
	suite.NoError(suite.notifications.HandleAssignmentNotification(suite.ctx, suite.payload(payload)))

	suite.Empty(suite.mailer.sent)
	suite.Empty(suite.slack.posts)

	suite.ErrorIs(suite.notifications.HandleAssignmentNotification(suite.ctx, []byte("nope")), queue.ErrMalformedPayload)
}

func (suite *ServiceTestSuite) TestNotifyAssignment_RunsThroughSyncQueue() {
	mux := queue.NewMux()
	syncQueue := queue.NewSyncQueue(mux)
	notifications := NewNotificationService(suite.store, syncQueue, suite.mailer, nil, "")
	notifications.Register(mux)

	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	a, err := NewAssignmentService(suite.store, notifications, nil).Assign(suite.ctx, models.UserActor(owner.ID), f.ID, room.ID)
	suite.Require().NoError(err)
	syncQueue.Wait()

	suite.Require().Len(suite.mailer.sent, 1)
	suite.Equal(f.Email, suite.mailer.sent[0].To)
	suite.NotContains(suite.mailer.sent[0].Body, "/rooms/")
	suite.NotZero(a.ID)
}
