package controllers

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError translates a domain error into an HTTP status by its kind.
// Unclassified errors are logged and come back as a bare 500 so internals do
// not leak into responses.
func respondError(c *gin.Context, log logger.Log, err error) {
	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.ErrorErr("unhandled request error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
