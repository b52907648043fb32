package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/response"
	"github.com/stackit-qa/stackit/backend/internal/service"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

type AuthHandler struct {
	auth   *service.AuthService
	cookie cookieConfig
	logger logrus.FieldLogger
}

func NewAuthHandler(auth *service.AuthService, cookie cookieConfig, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, logger: logger}
}

type sessionView struct {
	User *models.UserRef `json:"user"`
}

// Signup handles user registration. Both JSON and form bodies are accepted.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.FromBinding(err), h.logger)
		return
	}

	user, token, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}

	h.setCookie(c, token, int(h.cookie.ttl.Seconds()))
	response.Created(c, "User created successfully", sessionView{User: user.Ref()})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.FromBinding(err), h.logger)
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}

	h.setCookie(c, token, int(h.cookie.ttl.Seconds()))
	response.OK(c, "Login successful", sessionView{User: user.Ref()})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	response.OK(c, "User logged out successfully", nil)
}

// Me returns the identity carried by the session token.
func (h *AuthHandler) Me(c *gin.Context) {
	response.OK(c, "", caller(c))
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
