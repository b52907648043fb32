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

type QuestionHandler struct {
	questions *service.QuestionService
	logger    logrus.FieldLogger
}

func NewQuestionHandler(questions *service.QuestionService, logger logrus.FieldLogger) *QuestionHandler {
	return &QuestionHandler{questions: questions, logger: logger}
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var req models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.FromBinding(err), h.logger)
		return
	}

	q, err := h.questions.Create(c.Request.Context(), caller(c).UserID, req)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.Created(c, "Question created", q.Record())
}

// List supports ?tag= for an exact tag and ?q= for a title search.
func (h *QuestionHandler) List(c *gin.Context) {
	filter := models.QuestionFilter{
		Tag:    c.Query("tag"),
		Search: c.Query("q"),
	}

	list, err := h.questions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Questions fetched successfully", list)
}

// Get returns the question detail; signed-in callers see their own votes.
func (h *QuestionHandler) Get(c *gin.Context) {
	viewer, _ := middleware.IdentityFrom(c)

	detail, err := h.questions.Get(c.Request.Context(), c.Param("id"), viewer.UserID)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Question fetched successfully", detail)
}

func (h *QuestionHandler) Update(c *gin.Context) {
	var req models.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.FromBinding(err), h.logger)
		return
	}

	q, err := h.questions.Update(c.Request.Context(), caller(c).UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Question updated successfully", q.Record())
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), caller(c).UserID, c.Param("id")); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Question deleted successfully", nil)
}
