package controllers

import (
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/submission"
	"ClassBridge/pkg/logger"
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmissionService interface {
	Create(ctx context.Context, principal models.Principal, input submission.CreateInput) (*models.SubmissionView, error)
	ReviseContent(ctx context.Context, principal models.Principal, id uuid.UUID, input submission.ReviseInput) (*models.SubmissionView, error)
	Grade(ctx context.Context, principal models.Principal, id uuid.UUID, grade int, feedback string) (*models.SubmissionView, error)
	List(ctx context.Context, principal models.Principal) ([]models.SubmissionView, error)
	GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.SubmissionView, error)
	ListForAssignment(ctx context.Context, principal models.Principal, assignmentID uuid.UUID) ([]models.SubmissionView, error)
	UploadAttachment(ctx context.Context, principal models.Principal, id uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.Attachment, error)
}

type SubmissionHandler struct {
	log     logger.Log
	service SubmissionService
}

func NewSubmissionHandler(l logger.Log, s SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{log: l, service: s}
}

type createSubmissionRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" binding:"required"`
	Content      string    `json:"content"`
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input createSubmissionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.Create(c.Request.Context(), principal, submission.CreateInput{
		AssignmentID: input.AssignmentID,
		Content:      input.Content,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type reviseSubmissionRequest struct {
	Content string `json:"content"`
}

func (h *SubmissionHandler) Revise(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission_id"})
		return
	}

	var input reviseSubmissionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.ReviseContent(c.Request.Context(), principal, id, submission.ReviseInput{
		Content: input.Content,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type gradeRequest struct {
	Grade    *int   `json:"grade" binding:"required"`
	Feedback string `json:"feedback"`
}

func (h *SubmissionHandler) Grade(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission_id"})
		return
	}

	var input gradeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.Grade(c.Request.Context(), principal, id, *input.Grade, input.Feedback)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SubmissionHandler) List(c *gin.Context) {
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

func (h *SubmissionHandler) GetByID(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission_id"})
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SubmissionHandler) ListForAssignment(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment_id"})
		return
	}

	views, err := h.service.ListForAssignment(c.Request.Context(), principal, assignmentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *SubmissionHandler) UploadAttachment(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission_id"})
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
