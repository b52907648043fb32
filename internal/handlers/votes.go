package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/middleware"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/response"
	"github.com/stackit-qa/stackit/backend/internal/service"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

type VoteHandler struct {
	votes  *service.VoteService
	logger logrus.FieldLogger
}

func NewVoteHandler(votes *service.VoteService, logger logrus.FieldLogger) *VoteHandler {
	return &VoteHandler{votes: votes, logger: logger}
}

// Get returns the tally of an answer. The caller's vote comes from the
// session when signed in, otherwise from ?userId=.
func (h *VoteHandler) Get(c *gin.Context) {
	userID := c.Query("userId")
	if id, ok := middleware.IdentityFrom(c); ok {
		userID = id.UserID
	}

	tally, err := h.votes.Tally(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "", tally)
}

// Cast toggles or switches the caller's vote.
func (h *VoteHandler) Cast(c *gin.Context) {
	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.FromBinding(err), h.logger)
		return
	}

	tally, err := h.votes.Cast(c.Request.Context(), caller(c).UserID, c.Param("id"), req.VoteType)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Vote recorded", tally)
}

func (h *VoteHandler) Remove(c *gin.Context) {
	tally, err := h.votes.Remove(c.Request.Context(), caller(c).UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Vote removed", tally)
}
