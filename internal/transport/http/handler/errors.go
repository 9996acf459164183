package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperror "github.com/bravo68web/scribe/pkg/errors"
)

// respondError maps an application error onto its HTTP status. Internal
// detail never leaves the process for 5xx responses.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus()
		message := appErr.Message
		if status >= http.StatusInternalServerError {
			message = "An internal error occurred"
		}
		c.JSON(status, gin.H{
			"error":   http.StatusText(status),
			"message": message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "An internal error occurred",
	})
}

// respondBadRequest reports a malformed request body or parameter
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "bad_request",
		"message": "Invalid request",
		"details": err.Error(),
	})
}
