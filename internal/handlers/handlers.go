package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/config"
	"github.com/stackit-qa/stackit/backend/internal/middleware"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/realtime"
	"github.com/stackit-qa/stackit/backend/internal/service"
	"github.com/stackit-qa/stackit/backend/internal/storage"
)

// Services are the use cases the handlers call into.
type Services struct {
	Auth          *service.AuthService
	Questions     *service.QuestionService
	Answers       *service.AnswerService
	Votes         *service.VoteService
	Notifications *service.NotificationService
}

// Deps is everything NewHandler needs.
type Deps struct {
	Services Services
	Hub      *realtime.Hub
	Storage  storage.Service
	Config   config.Config
	Logger   logrus.FieldLogger
}

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	Question     *QuestionHandler
	Answer       *AnswerHandler
	Vote         *VoteHandler
	Notification *NotificationHandler
	User         *UserHandler
	Upload       *UploadHandler
	Realtime     *RealtimeHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	cookie := cookieConfig{
		name:   d.Config.Auth.CookieName,
		ttl:    d.Config.Auth.TokenTTL,
		secure: d.Config.Auth.CookieSecure,
	}

	return &Handler{
		Auth:         NewAuthHandler(d.Services.Auth, cookie, d.Logger),
		Question:     NewQuestionHandler(d.Services.Questions, d.Logger),
		Answer:       NewAnswerHandler(d.Services.Answers, d.Logger),
		Vote:         NewVoteHandler(d.Services.Votes, d.Logger),
		Notification: NewNotificationHandler(d.Services.Notifications, d.Logger),
		User:         NewUserHandler(d.Services.Questions, d.Logger),
		Upload:       NewUploadHandler(d.Storage, d.Config.Storage.MaxUploadSize, d.Logger),
		Realtime:     NewRealtimeHandler(d.Hub, d.Config.Server.AllowedOrigins, realtime.DefaultConnConfig(), d.Logger),
	}
}

// caller returns the identity set by the auth middleware. Only call it on
// routes behind middleware.AuthMiddleware.
func caller(c *gin.Context) models.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

type cookieConfig struct {
	name   string
	ttl    time.Duration
	secure bool
}
