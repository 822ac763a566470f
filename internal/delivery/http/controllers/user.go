package controllers

import (
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/user"
	"ClassBridge/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserService interface {
	Create(ctx context.Context, principal models.Principal, input user.CreateInput) (*models.User, error)
	GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, principal models.Principal) ([]models.User, error)
	ListInstructors(ctx context.Context, principal models.Principal) ([]models.User, error)
	Update(ctx context.Context, principal models.Principal, id uuid.UUID, input user.UpdateInput) (*models.User, error)
	Delete(ctx context.Context, principal models.Principal, id uuid.UUID) error
}

type UserHandler struct {
	log     logger.Log
	service UserService
}

func NewUserHandler(l logger.Log, s UserService) *UserHandler {
	return &UserHandler{log: l, service: s}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *UserHandler) Create(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input createUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), principal, user.CreateInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) List(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	users, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) ListInstructors(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	instructors, err := h.service.ListInstructors(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, instructors)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *UserHandler) Update(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	var input updateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), principal, id, user.UpdateInput{
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) Delete(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
