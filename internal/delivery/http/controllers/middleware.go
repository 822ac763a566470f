package controllers

import (
	"ClassBridge/internal/models"
	"ClassBridge/pkg/logger"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const PrincipalCtx = "principal"

type PrincipalResolver interface {
	Principal(ctx context.Context, token string) (models.Principal, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service PrincipalResolver
}

func NewAuthMiddlewareProvider(log logger.Log, s PrincipalResolver) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	var token string
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		token = parts[1]
	}
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	principal, err := h.service.Principal(c.Request.Context(), token)
	if err != nil {
		h.log.Info("failed to resolve principal", "error", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set(PrincipalCtx, principal)
	c.Next()
}

// RequireRoles is a coarse route gate. The services re-check ownership on
// every operation; this only keeps obviously wrong roles off the route.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := principalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "principal not found"})
			return
		}
		if _, allowed := roleSet[principal.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (models.Principal, bool) {
	raw, exists := c.Get(PrincipalCtx)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := raw.(models.Principal)
	return principal, ok
}

func LoggingMiddleware(logger logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery
		if rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		msg := fmt.Sprintf("%s %s", method, path)

		logger.Info(msg,
			"status", status,
			"latency", latency,
			"client_ip", clientIP,
		)

		for _, ginErr := range c.Errors {
			logger.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", method,
				"path", path,
			)
		}
	}
}
