package controllers

import (
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/assignment"
	"ClassBridge/pkg/logger"
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssignmentService interface {
	Create(ctx context.Context, principal models.Principal, input assignment.CreateInput) (*models.AssignmentView, error)
	Update(ctx context.Context, principal models.Principal, id uuid.UUID, input assignment.UpdateInput) (*models.AssignmentView, error)
	Delete(ctx context.Context, principal models.Principal, id uuid.UUID) error
	List(ctx context.Context, principal models.Principal) ([]models.AssignmentView, error)
	GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.AssignmentView, error)
	ListForCourse(ctx context.Context, principal models.Principal, courseID uuid.UUID) ([]models.AssignmentView, error)
	UploadAttachment(ctx context.Context, principal models.Principal, id uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.Attachment, error)
}

type AssignmentHandler struct {
	log     logger.Log
	service AssignmentService
}

func NewAssignmentHandler(l logger.Log, s AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{log: l, service: s}
}

type createAssignmentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	CourseID    uuid.UUID `json:"course_id" binding:"required"`
	DueDate     time.Time `json:"due_date"`
	TotalPoints int       `json:"total_points"`
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input createAssignmentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.Create(c.Request.Context(), principal, assignment.CreateInput{
		Title:       input.Title,
		Description: input.Description,
		CourseID:    input.CourseID,
		DueDate:     input.DueDate,
		TotalPoints: input.TotalPoints,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type updateAssignmentRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	TotalPoints int       `json:"total_points"`
}

func (h *AssignmentHandler) Update(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment_id"})
		return
	}

	var input updateAssignmentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.Update(c.Request.Context(), principal, id, assignment.UpdateInput{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		TotalPoints: input.TotalPoints,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment_id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignment deleted"})
}

func (h *AssignmentHandler) List(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	views, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AssignmentHandler) GetByID(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment_id"})
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AssignmentHandler) ListForCourse(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	views, err := h.service.ListForCourse(c.Request.Context(), principal, courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AssignmentHandler) UploadAttachment(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment_id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(fileHeader.Filename)))
	}

	att, err := h.service.UploadAttachment(
		c.Request.Context(),
		principal,
		id,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		contentType,
	)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, att)
}
