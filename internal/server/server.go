package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/config"
	"github.com/stackit-qa/stackit/backend/internal/database"
	"github.com/stackit-qa/stackit/backend/internal/handlers"
	"github.com/stackit-qa/stackit/backend/internal/middleware"
	"github.com/stackit-qa/stackit/backend/internal/ratelimit"
	"github.com/stackit-qa/stackit/backend/internal/storage"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

type Server struct {
	cfg     config.Config
	db      database.Service
	handler *handlers.Handler
	auth    middleware.Authenticator
	storage storage.Service
	limiter *ratelimit.KeyedRateLimiter
	logger  logrus.FieldLogger
}

// Options are the collaborators of a Server. Limiter may be nil to disable
// rate limiting on the auth routes.
type Options struct {
	Config  config.Config
	DB      database.Service
	Handler *handlers.Handler
	Auth    middleware.Authenticator
	Storage storage.Service
	Limiter *ratelimit.KeyedRateLimiter
	Logger  logrus.FieldLogger
}

func New(opts Options) *Server {
	return &Server{
		cfg:     opts.Config,
		db:      opts.DB,
		handler: opts.Handler,
		auth:    opts.Auth,
		storage: opts.Storage,
		limiter: opts.Limiter,
		logger:  opts.Logger,
	}
}

// NewServer creates and configures a new server
func NewServer(s *Server) *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	validation.RegisterGin()

	r := gin.New()
	// ClientIP keys the auth rate limit, so forwarding headers only count
	// when they come from a configured proxy.
	if err := r.SetTrustedProxies(s.cfg.Server.TrustedProxies); err != nil {
		s.logger.WithError(err).Error("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(s.logger))
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.health)

	if local, ok := s.storage.(*storage.LocalService); ok {
		r.Static(local.URLPrefix(), local.Dir())
	}

	cookie := s.cfg.Auth.CookieName
	requireAuth := middleware.AuthMiddleware(s.auth, cookie)
	optionalAuth := middleware.OptionalAuth(s.auth, cookie)

	api := r.Group("/api/v1")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		if s.limiter != nil {
			authRoutes.Use(middleware.RateLimit(s.limiter))
		}
		authRoutes.POST("/signup", s.handler.Auth.Signup)
		authRoutes.POST("/login", s.handler.Auth.Login)
		authRoutes.POST("/logout", requireAuth, s.handler.Auth.Logout)

		// Public reads
		api.GET("/questions", s.handler.Question.List)
		api.GET("/questions/:id", optionalAuth, s.handler.Question.Get)
		api.GET("/votes/answer/:id", optionalAuth, s.handler.Vote.Get)
		api.GET("/users/:userId/questions", s.handler.User.Questions)
		api.GET("/users/:userId/answered-questions", s.handler.User.AnsweredQuestions)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(requireAuth)
		{
			protected.GET("/user", s.handler.Auth.Me)

			protected.POST("/questions", s.handler.Question.Create)
			protected.PUT("/questions/:id", s.handler.Question.Update)
			protected.DELETE("/questions/:id", s.handler.Question.Delete)

			protected.POST("/answers", s.handler.Answer.Create)
			protected.PUT("/answers/:id", s.handler.Answer.Update)
			protected.DELETE("/answers/:id", s.handler.Answer.Delete)

			protected.POST("/votes/answer/:id", s.handler.Vote.Cast)
			protected.DELETE("/votes/answer/:id", s.handler.Vote.Remove)

			protected.GET("/notifications", s.handler.Notification.List)
			protected.PATCH("/notifications/read-all", s.handler.Notification.MarkAllRead)
			protected.PATCH("/notifications/:id/read", s.handler.Notification.MarkRead)

			protected.POST("/upload", s.handler.Upload.Upload)
			protected.GET("/ws", s.handler.Realtime.Serve)
		}
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// Credentialed requests need the concrete origin echoed back, which
	// AllowOriginFunc does while still accepting every origin.
	if slices.Contains(s.cfg.Server.AllowedOrigins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = s.cfg.Server.AllowedOrigins
	}
	return cfg
}

func (s *Server) health(c *gin.Context) {
	stats := s.db.Health(c.Request.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
