package controllers

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/pkg/logger"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, user models.User) (*models.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	service AuthService
	log     logger.Log
}

func NewAuthHandler(l logger.Log, auth AuthService) *AuthHandler {
	return &AuthHandler{
		service: auth,
		log:     l,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
	if err != nil {
		if errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) || errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

type tokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input tokenRefreshRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokenPair, err := h.service.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) ||
			errors.Is(err, app_errors.ErrTokenExpired) ||
			errors.Is(err, app_errors.ErrTokenNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  tokenPair.AccessToken.Raw,
		RefreshToken: tokenPair.RefreshToken.Raw,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.service.Logout(c.Request.Context(), principal.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.service.User(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
