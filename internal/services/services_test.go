package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/room-workflow-api/internal/config"
	"github.com/yukikurage/room-workflow-api/internal/database"
	"github.com/yukikurage/room-workflow-api/internal/models"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"gorm.io/gorm"
)

type enqueuedTask struct {
	Type    string
	Payload []byte
}

// fakeQueue records tasks instead of running them
type fakeQueue struct {
	mu    sync.Mutex
	tasks []enqueuedTask
	err   error
}

func (q *fakeQueue) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	if q.err != nil {
		return q.err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, enqueuedTask{Type: taskType, Payload: data})
	return nil
}

func (q *fakeQueue) IsAsync() bool { return false }
func (q *fakeQueue) Close() error  { return nil }

func (q *fakeQueue) ofType(taskType string) []enqueuedTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []enqueuedTask
	for _, t := range q.tasks {
		if t.Type == taskType {
			out = append(out, t)
		}
	}
	return out
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type slackPost struct {
	Token, Channel, Webhook, Text string
}

// fakeSlack hands out sequential timestamps; posts to failing return errBoom
type fakeSlack struct {
	mu      sync.Mutex
	posts   []slackPost
	created []string
	seq     int
	err     error
	failing string
}

func (s *fakeSlack) CreateChannel(ctx context.Context, token, name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, name)
	return fmt.Sprintf("C%03d", len(s.created)), nil
}

func (s *fakeSlack) PostMessage(ctx context.Context, token, channelID, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.failing == channelID {
		return "", errBoom
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.posts = append(s.posts, slackPost{Token: token, Channel: channelID, Text: text})
	return fmt.Sprintf("1700000000.%06d", s.seq), nil
}

func (s *fakeSlack) PostWebhook(ctx context.Context, webhookURL, text string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, slackPost{Webhook: webhookURL, Text: text})
	return nil
}

var errBoom = errors.New("boom")

// ServiceTestSuite wires every service on in-memory SQLite with fake side effects
type ServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *repository.Store
	ctx   context.Context
	clock time.Time

	queue  *fakeQueue
	mailer *fakeMailer
	slack  *fakeSlack

	bridge        *SlackBridge
	notifications *NotificationService
	assignments   *AssignmentService
	messages      *MessageService
	freelancers   *FreelancerService
}

func (suite *ServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, "info")
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateDatabase(suite.db))

	suite.ctx = context.Background()
	suite.store = repository.NewStore(suite.db)
	suite.queue = &fakeQueue{}
	suite.mailer = &fakeMailer{}
	suite.slack = &fakeSlack{}
	suite.clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	slackCfg := config.Default().Slack
	suite.bridge = NewSlackBridge(suite.store, suite.queue, suite.slack, slackCfg)
	suite.notifications = NewNotificationService(suite.store, suite.queue, suite.mailer, suite.slack, "https://rooms.example.com/")
	suite.assignments = NewAssignmentService(suite.store, suite.notifications, suite.bridge)
	suite.messages = NewMessageService(suite.store, suite.queue)
	suite.freelancers = NewFreelancerService(suite.store)

	now := func() time.Time { return suite.clock }
	suite.bridge.now = now
	suite.assignments.now = now
	suite.messages.now = now
	suite.freelancers.now = now
}

func (suite *ServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ServiceTestSuite) advance(d time.Duration) {
	suite.clock = suite.clock.Add(d)
}

func (suite *ServiceTestSuite) createUser(email string) *models.User {
	user := &models.User{Email: email, FirstName: "Client", LastName: email[:1]}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ServiceTestSuite) createFreelancer(email string) *models.Freelancer {
	f := &models.Freelancer{Email: email, FirstName: "Free", LastName: email[:2], Status: models.FreelancerStatusLive}
	suite.Require().NoError(suite.db.Create(f).Error)
	return f
}

func (suite *ServiceTestSuite) createRoom(owner *models.User) *models.Room {
	room := &models.Room{UserID: owner.ID, CategoryName: "Design", Description: "A new logo"}
	suite.Require().NoError(suite.db.Create(room).Error)
	return room
}

// setStatus forces an assignment into status, bypassing the state machine
func (suite *ServiceTestSuite) setStatus(freelancerID, roomID uint64, status models.AssignmentStatus) {
	suite.Require().NoError(suite.db.Model(&models.Assignment{}).
		Where("freelancer_id = ? AND room_id = ?", freelancerID, roomID).
		Update("status", status).Error)
}

func (suite *ServiceTestSuite) assign(owner *models.User, f *models.Freelancer, room *models.Room) *models.Assignment {
	a, err := suite.assignments.Assign(suite.ctx, models.UserActor(owner.ID), f.ID, room.ID)
	suite.Require().NoError(err)
	return a
}

func (suite *ServiceTestSuite) unseen(actor models.Actor, roomID uint64) int64 {
	n, err := suite.store.Messages.UnseenCount(suite.ctx, actor, roomID)
	suite.Require().NoError(err)
	return n
}

var _ queue.TaskQueue = (*fakeQueue)(nil)
