package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"anonmsg/internal/service" // Operation errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusOf maps an operation error to its HTTP status
func statusOf(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInputTooLong),
		errors.Is(err, service.ErrInvalidContent),
		errors.Is(err, service.ErrInvalidTheme),
		errors.Is(err, service.ErrPasswordTooShort):
		return http.StatusBadRequest
	// Conflict errors
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict
	// Auth errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized
	// Not-found errors
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrRecipientNotFound):
		return http.StatusNotFound
	// Anything else is a persistence or internal fault
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes the error as JSON with the mapped status
func respondErr(c *gin.Context, err error) {
	status := statusOf(err) // Map error to status
	if status == http.StatusInternalServerError {
		// Log the fault and hide the detail from the caller
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()}) // Caller-visible message
}
