package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbukhari/diwan/internal/task"
	"github.com/sirupsen/logrus"
)

// fail maps a domain error to an HTTP status and writes the bilingual
// error body the frontend expects: a machine-readable English message and
// a display message in Arabic.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, task.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, task.ErrForbiddenTransition):
		status = http.StatusForbidden
	case errors.Is(err, task.ErrValidation), errors.Is(err, task.ErrInvalidStatus):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, task.ErrReviewerRequired):
		status = http.StatusConflict
	case errors.Is(err, task.ErrAlreadyAssigned):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logrus.WithError(err).Error("request failed")
	}

	body := gin.H{"error": err.Error()}
	if msg := task.ArabicMessage(err); msg != "" {
		body["message_ar"] = msg
	}
	c.JSON(status, body)
}

// badRequest reports a malformed request body or parameter.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      err.Error(),
		"message_ar": "البيانات المدخلة غير صالحة",
	})
}
