package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/yukikurage/room-workflow-api/internal/config"
	"github.com/yukikurage/room-workflow-api/internal/database"
	"github.com/yukikurage/room-workflow-api/internal/handlers"
	"github.com/yukikurage/room-workflow-api/internal/middleware"
	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/internal/repository"
	"github.com/yukikurage/room-workflow-api/internal/services"
	"github.com/yukikurage/room-workflow-api/internal/slack"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	store := repository.NewStore(database.GetDB())

	// Task queue; handlers are registered on the mux once the services exist
	mux := queue.NewMux()
	taskQueue := queue.New(cfg, mux)

	var slackAPI slack.API
	if cfg.Slack.BotToken != "" {
		slackAPI = slack.NewClient(cfg.Slack)
	}

	bridge := services.NewSlackBridge(store, taskQueue, slackAPI, cfg.Slack)
	notifications := services.NewNotificationService(store, taskQueue, services.NewMailer(cfg.Mail), slackAPI, cfg.Mail.BaseURL)
	assignmentService := services.NewAssignmentService(store, notifications, bridge)
	messageService := services.NewMessageService(store, taskQueue)
	freelancerService := services.NewFreelancerService(store)

	bridge.Register(mux)
	notifications.Register(mux)

	var worker *queue.Worker
	if taskQueue.IsAsync() {
		worker = queue.NewWorker(cfg, mux)
		if err := worker.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start task worker")
		}
	}

	// Background jobs
	scheduler := cron.New()
	if _, err := bridge.SchedulePruning(scheduler); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Slack.PruneSchedule).Msg("invalid prune schedule")
	}
	scheduler.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Router
	r := gin.New()
	r.Use(logger.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS(cfg.Server.AllowOrigins))
	r.Use(sessions.Sessions(cfg.Session.Name, newSessionStore(cfg)))

	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	messageHandler := handlers.NewMessageHandler(messageService)
	freelancerHandler := handlers.NewFreelancerHandler(freelancerService)
	slackHandler := handlers.NewSlackHandler(bridge, cfg.Slack.SigningSecret)
	healthHandler := handlers.NewHealthHandler(database.GetDB(), taskQueue)

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		// Slack Events API (public, signature verified)
		limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		api.POST("/slack/events", limiter.Middleware(), slackHandler.Events)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(), middleware.TrackActivity(freelancerService))

		rooms := authed.Group("/rooms/:id")
		rooms.Use(middleware.RequireRoomAccess(store))
		{
			rooms.POST("/assignments", assignmentHandler.Assign)
			rooms.GET("/assignments/:freelancer_id", assignmentHandler.GetAssignment)
			rooms.POST("/assignments/:freelancer_id/events", assignmentHandler.ApplyEvent)
			rooms.POST("/assignments/:freelancer_id/rate", assignmentHandler.Rate)
			rooms.GET("/messages", messageHandler.ListMessages)
			rooms.POST("/messages", messageHandler.PostMessage)
			rooms.POST("/seen", messageHandler.MarkSeen)
			rooms.GET("/unseen", messageHandler.UnseenCount)
			rooms.POST("/slack", slackHandler.Provision)
		}

		freelancers := authed.Group("/freelancers")
		{
			freelancers.GET("/me/rooms", assignmentHandler.ListMyRooms)
			freelancers.GET("/me/rooms/:id/just-accepted", assignmentHandler.JustAccepted)
			freelancers.DELETE("/:id", freelancerHandler.DeleteFreelancer)
			freelancers.PUT("/:id/status", freelancerHandler.SetStatus)
			freelancers.GET("/:id/presence", freelancerHandler.Presence)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	cancel()
	<-scheduler.Stop().Done()
	if worker != nil {
		worker.Stop()
	}
	if err := taskQueue.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close task queue")
	}
	logger.Info().Msg("server stopped")
}

// newSessionStore keeps sessions in Redis when it is configured and in signed
// cookies otherwise.
func newSessionStore(cfg *config.Config) sessions.Store {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Server.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.Redis.Enabled {
		store, err := redisStore.NewStore(10, "tcp", cfg.Redis.Addr, "", cfg.Redis.Password, []byte(cfg.Session.Secret))
		if err == nil {
			store.Options(options)
			return store
		}
		logger.Warn().Err(err).Msg("redis session store unavailable, using cookie sessions")
	}

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(options)
	return store
}
