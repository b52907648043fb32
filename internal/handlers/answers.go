package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/response"
	"github.com/stackit-qa/stackit/backend/internal/service"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

type AnswerHandler struct {
	answers *service.AnswerService
	logger  logrus.FieldLogger
}

func NewAnswerHandler(answers *service.AnswerService, logger logrus.FieldLogger) *AnswerHandler {
	return &AnswerHandler{answers: answers, logger: logger}
}

// Create posts an answer. The question owner is notified by the service.
func (h *AnswerHandler) Create(c *gin.Context) {
	var req models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.FromBinding(err), h.logger)
		return
	}

	answer, err := h.answers.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.Created(c, "Answer created", gin.H{"id": answer.ID})
}

func (h *AnswerHandler) Update(c *gin.Context) {
	var req models.UpdateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.FromBinding(err), h.logger)
		return
	}

	answer, err := h.answers.Update(c.Request.Context(), caller(c).UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Answer updated successfully", answer.Record())
}

func (h *AnswerHandler) Delete(c *gin.Context) {
	if err := h.answers.Delete(c.Request.Context(), caller(c).UserID, c.Param("id")); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Answer deleted successfully", nil)
}
