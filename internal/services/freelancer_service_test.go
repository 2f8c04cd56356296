package services

import (
	"time"

	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/workflow"
)

func (suite *ServiceTestSuite) TestDeleteFreelancer_CleansUp() {
	owner := suite.createUser("owner@example.com")
	room := suite.createRoom(owner)
	f := suite.createFreelancer("f1@example.com")
	other := suite.createFreelancer("f2@example.com")
	suite.assign(owner, f, room)
	suite.assign(owner, other, room)

	_, err := suite.assignments.ApplyEvent(suite.ctx, models.FreelancerActor(f.ID), f.ID, room.ID, workflow.FreelancerAccepts)
	suite.Require().NoError(err)
	suite.advance(time.Minute)
	_, err = suite.messages.PostMessage(suite.ctx, models.FreelancerActor(f.ID), room.ID, "bye")
	suite.Require().NoError(err)

	suite.ErrorIs(suite.freelancers.Delete(suite.ctx, models.FreelancerActor(other.ID), f.ID), ErrNotSelf)
	suite.ErrorIs(suite.freelancers.Delete(suite.ctx, models.UserActor(f.ID), f.ID), ErrNotSelf)

	suite.Require().NoError(suite.freelancers.Delete(suite.ctx, models.FreelancerActor(f.ID), f.ID))

	_, err = suite.assignments.Find(suite.ctx, f.ID, room.ID)
	suite.ErrorIs(err, ErrAssignmentNotFound)
	_, err = suite.assignments.Find(suite.ctx, other.ID, room.ID)
	suite.NoError(err)

	var bindings int64
	suite.db.Model(&models.SlackChannel{}).Where("freelancer_id = ?", f.ID).Count(&bindings)
	suite.Equal(int64(0), bindings)

	// the system message marker survives, the deleted freelancer's message marker does not
	suite.Equal(int64(1), suite.unseen(models.UserActor(owner.ID), room.ID))

	suite.ErrorIs(suite.freelancers.Delete(suite.ctx, models.FreelancerActor(f.ID), f.ID), ErrFreelancerNotFound)
}

func (suite *ServiceTestSuite) TestSetStatus() {
	f := suite.createFreelancer("f1@example.com")
	self := models.FreelancerActor(f.ID)

	suite.Require().NoError(suite.freelancers.SetStatus(suite.ctx, self, f.ID, models.FreelancerStatusPause))
	found, err := suite.store.Freelancers.FindByID(suite.ctx, f.ID)
	suite.Require().NoError(err)
	suite.Equal(models.FreelancerStatusPause, found.Status)

	suite.ErrorIs(suite.freelancers.SetStatus(suite.ctx, self, f.ID, "asleep"), ErrInvalidFreelancerState)
	suite.ErrorIs(suite.freelancers.SetStatus(suite.ctx, models.FreelancerActor(f.ID+1), f.ID, models.FreelancerStatusLive), ErrNotSelf)
}

func (suite *ServiceTestSuite) TestPresence() {
	f := suite.createFreelancer("f1@example.com")

	presence, err := suite.freelancers.Presence(suite.ctx, f.ID)
	suite.Require().NoError(err)
	suite.False(presence.Online)
	suite.Nil(presence.LastSeenAt)

	suite.Require().NoError(suite.freelancers.Touch(suite.ctx, models.FreelancerActor(f.ID)))
	presence, err = suite.freelancers.Presence(suite.ctx, f.ID)
	suite.Require().NoError(err)
	suite.True(presence.Online)

	suite.advance(11 * time.Minute)
	presence, err = suite.freelancers.Presence(suite.ctx, f.ID)
	suite.Require().NoError(err)
	suite.False(presence.Online)

	owner := suite.createUser("owner@example.com")
	suite.NoError(suite.freelancers.Touch(suite.ctx, models.UserActor(owner.ID)))

	_, err = suite.freelancers.Presence(suite.ctx, 404)
	suite.ErrorIs(err, ErrFreelancerNotFound)
}
