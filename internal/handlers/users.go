package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/response"
	"github.com/stackit-qa/stackit/backend/internal/service"
)

// UserHandler serves the public per-user listings.
type UserHandler struct {
	questions *service.QuestionService
	logger    logrus.FieldLogger
}

func NewUserHandler(questions *service.QuestionService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{questions: questions, logger: logger}
}

// Questions returns the questions a user asked, newest first.
func (h *UserHandler) Questions(c *gin.Context) {
	list, err := h.questions.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Questions fetched successfully", list)
}

// AnsweredQuestions returns the questions a user answered, most recently
// first answered first.
func (h *UserHandler) AnsweredQuestions(c *gin.Context) {
	list, err := h.questions.ListAnsweredByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Answered questions fetched successfully", list)
}
