package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/middleware"
	"github.com/kettlegourmet/hrm/internal/service"
	"gorm.io/gorm"
)

// Maps domain errors onto status codes with an {"error": ...} body
func respondError(c *gin.Context, err error) {
	var validation *leave.ValidationError
	var tooMany *service.TooManyAttemptsError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
	case errors.Is(err, leave.ErrInvalidReplacement):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, leave.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, leave.ErrTierInUse), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, leave.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &tooMany):
		c.Header("Retry-After", retryAfter(tooMany))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
	}
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		UserID:    middleware.CurrentUserID(c),
		RequestID: c.GetString(middleware.RequestIDKey),
	}
}
