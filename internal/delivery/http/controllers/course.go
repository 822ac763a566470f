package controllers

import (
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/course"
	"ClassBridge/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CourseService interface {
	Create(ctx context.Context, principal models.Principal, input course.CreateInput) (*models.CourseView, error)
	Update(ctx context.Context, principal models.Principal, id uuid.UUID, input course.UpdateInput) (*models.CourseView, error)
	Delete(ctx context.Context, principal models.Principal, id uuid.UUID) error
	List(ctx context.Context, principal models.Principal) ([]models.CourseView, error)
	GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.CourseView, error)
	ListPublished(ctx context.Context) ([]models.CourseView, error)
	Search(ctx context.Context, principal models.Principal, query string) ([]models.CourseView, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, principal models.Principal, courseID uuid.UUID) (*models.EnrollmentView, error)
	ListForStudent(ctx context.Context, principal models.Principal, studentID uuid.UUID) ([]models.EnrollmentView, error)
	ListForCourse(ctx context.Context, principal models.Principal, courseID uuid.UUID) ([]models.EnrollmentView, error)
}

type CourseHandler struct {
	log         logger.Log
	service     CourseService
	enrollments EnrollmentService
}

func NewCourseHandler(l logger.Log, s CourseService, e EnrollmentService) *CourseHandler {
	return &CourseHandler{log: l, service: s, enrollments: e}
}

type lessonEntryRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Order       int    `json:"order"`
}

type createCourseRequest struct {
	Title        string               `json:"title" binding:"required"`
	Description  string               `json:"description"`
	InstructorID uuid.UUID            `json:"instructor_id" binding:"required"`
	Category     string               `json:"category"`
	Duration     string               `json:"duration"`
	Content      []lessonEntryRequest `json:"content"`
	IsPublished  bool                 `json:"is_published"`
}

func lessonEntries(in []lessonEntryRequest) []models.LessonEntry {
	if in == nil {
		return nil
	}
	out := make([]models.LessonEntry, 0, len(in))
	for _, l := range in {
		out = append(out, models.LessonEntry{
			Title:       l.Title,
			Description: l.Description,
			VideoURL:    l.VideoURL,
			Order:       l.Order,
		})
	}
	return out
}

func (h *CourseHandler) Create(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input createCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.Create(c.Request.Context(), principal, course.CreateInput{
		Title:        input.Title,
		Description:  input.Description,
		InstructorID: input.InstructorID,
		Category:     input.Category,
		Duration:     input.Duration,
		Content:      lessonEntries(input.Content),
		IsPublished:  input.IsPublished,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type updateCourseRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	InstructorID uuid.UUID            `json:"instructor_id"`
	Category     string               `json:"category"`
	Duration     string               `json:"duration"`
	Content      []lessonEntryRequest `json:"content"`
	IsPublished  *bool                `json:"is_published"`
}

func (h *CourseHandler) Update(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	var input updateCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.Update(c.Request.Context(), principal, id, course.UpdateInput{
		Title:        input.Title,
		Description:  input.Description,
		InstructorID: input.InstructorID,
		Category:     input.Category,
		Duration:     input.Duration,
		Content:      lessonEntries(input.Content),
		IsPublished:  input.IsPublished,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

func (h *CourseHandler) List(c *gin.Context) {
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

// ListPublished is the unauthenticated storefront listing.
func (h *CourseHandler) ListPublished(c *gin.Context) {
	views, err := h.service.ListPublished(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *CourseHandler) GetByID(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CourseHandler) Search(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	views, err := h.service.Search(c.Request.Context(), principal, query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	view, err := h.enrollments.Enroll(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// MyEnrollments returns the caller's own ledger.
func (h *CourseHandler) MyEnrollments(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	views, err := h.enrollments.ListForStudent(c.Request.Context(), principal, principal.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *CourseHandler) StudentEnrollments(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
		return
	}

	views, err := h.enrollments.ListForStudent(c.Request.Context(), principal, studentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *CourseHandler) Roster(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	views, err := h.enrollments.ListForCourse(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
