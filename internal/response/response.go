// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
)

// Envelope is the body of a successful response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorBody is the error part of a failed response.
type ErrorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

// ErrorEnvelope is the body of a failed response.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Errors  ErrorBody `json:"errors"`
}

// JSON writes a success envelope with the given status.
func JSON(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, message string, data any) {
	JSON(c, http.StatusOK, message, data)
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, message string, data any) {
	JSON(c, http.StatusCreated, message, data)
}

// Error maps err to its status and writes the error envelope. Errors without
// a domain code become 500 with a generic message and are logged.
func Error(c *gin.Context, err error, logger logrus.FieldLogger) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code == apperr.CodeInternal {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.FullPath(),
			}).WithError(err).Error("unhandled error")
		}
		Abort(c, apperr.ErrInternal)
		return
	}

	Abort(c, appErr)
}

// Abort writes e and stops the handler chain.
func Abort(c *gin.Context, e *apperr.Error) {
	c.AbortWithStatusJSON(e.HTTPStatus(), ErrorEnvelope{
		Errors: ErrorBody{Code: e.Code, Message: e.Message, Details: e.Details},
	})
}
