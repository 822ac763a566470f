package assignment

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/access"
	"ClassBridge/pkg/logger"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
}

type assignmentRepo interface {
	NewAssignment(ctx context.Context, assignment *models.Assignment) (uuid.UUID, error)
	AssignmentByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, assignment *models.Assignment) error
	DeleteAssignment(ctx context.Context, id uuid.UUID) error
	ListAssignments(ctx context.Context) ([]models.Assignment, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Assignment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Assignment, error)
	ListByCourses(ctx context.Context, courseIDs []uuid.UUID) ([]models.Assignment, error)
}

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type attachmentStore interface {
	Upload(ctx context.Context, entity string, entityID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
}

type eventNotifier interface {
	Publish(event models.Event)
}

// CatalogService manages assignments. Each assignment is anchored to the
// instructor of its course at creation time, so ownership checks never have to
// walk back to the course afterwards.
type CatalogService struct {
	log            logger.Log
	courseRepo     courseRepo
	enrollmentRepo enrollmentRepo
	assignmentRepo assignmentRepo
	userRepo       userRepo
	attachments    attachmentStore
	notifier       eventNotifier
	now            func() time.Time
}

func NewCatalogService(
	log logger.Log,
	c courseRepo,
	e enrollmentRepo,
	a assignmentRepo,
	u userRepo,
	att attachmentStore,
	n eventNotifier,
) *CatalogService {
	return &CatalogService{
		log:            log,
		courseRepo:     c,
		enrollmentRepo: e,
		assignmentRepo: a,
		userRepo:       u,
		attachments:    att,
		notifier:       n,
		now:            time.Now,
	}
}

type CreateInput struct {
	Title       string
	Description string
	CourseID    uuid.UUID
	DueDate     time.Time
	TotalPoints int
}

// UpdateInput carries a partial update. Zero values mean "leave unchanged";
// there is no way to clear a field through this payload.
type UpdateInput struct {
	Title       string
	Description string
	DueDate     time.Time
	TotalPoints int
}

func (s *CatalogService) Create(ctx context.Context, principal models.Principal, input CreateInput) (*models.AssignmentView, error) {
	if input.TotalPoints <= 0 {
		return nil, app_errors.ErrInvalidTotalPoints
	}
	if input.DueDate.IsZero() {
		return nil, app_errors.ErrMissingDueDate
	}

	course, err := s.courseRepo.CourseByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	if err := access.Decide(principal, access.ActionCreate, course.InstructorID); err != nil {
		return nil, app_errors.ErrNotCourseInstructor
	}

	now := s.now().UTC()
	assignment := models.Assignment{
		Title:        input.Title,
		Description:  input.Description,
		CourseID:     input.CourseID,
		InstructorID: course.InstructorID,
		DueDate:      input.DueDate,
		TotalPoints:  input.TotalPoints,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.assignmentRepo.NewAssignment(ctx, &assignment); err != nil {
		return nil, err
	}

	view := s.buildView(ctx, assignment)
	s.publish(models.EventAssignmentCreated, view)
	return &view, nil
}

func (s *CatalogService) Update(ctx context.Context, principal models.Principal, id uuid.UUID, input UpdateInput) (*models.AssignmentView, error) {
	assignment, err := s.assignmentRepo.AssignmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Decide(principal, access.ActionUpdate, assignment.InstructorID); err != nil {
		return nil, app_errors.ErrNotAssignmentInstructor
	}

	if input.Title != "" {
		assignment.Title = input.Title
	}
	if input.Description != "" {
		assignment.Description = input.Description
	}
	if !input.DueDate.IsZero() {
		assignment.DueDate = input.DueDate
	}
	if input.TotalPoints > 0 {
		assignment.TotalPoints = input.TotalPoints
	}
	assignment.UpdatedAt = s.now().UTC()

	if err := s.assignmentRepo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	view := s.buildView(ctx, *assignment)
	s.publish(models.EventAssignmentUpdated, view)
	return &view, nil
}

func (s *CatalogService) Delete(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	assignment, err := s.assignmentRepo.AssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Decide(principal, access.ActionDelete, assignment.InstructorID); err != nil {
		return app_errors.ErrNotAssignmentInstructor
	}

	if err := s.assignmentRepo.DeleteAssignment(ctx, id); err != nil {
		return err
	}

	s.notifier.Publish(models.Event{
		Type:       models.EventAssignmentDeleted,
		Payload:    map[string]uuid.UUID{"id": id},
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// List returns the assignments visible to the principal: all for admins, owned
// ones for instructors, those of enrolled courses for students.
func (s *CatalogService) List(ctx context.Context, principal models.Principal) ([]models.AssignmentView, error) {
	var (
		assignments []models.Assignment
		err         error
	)
	switch principal.Role {
	case models.AdminRole:
		assignments, err = s.assignmentRepo.ListAssignments(ctx)
	case models.InstructorRole:
		assignments, err = s.assignmentRepo.ListByInstructor(ctx, principal.ID)
	case models.StudentRole:
		var enrollments []models.Enrollment
		enrollments, err = s.enrollmentRepo.ListByStudent(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		courseIDs := make([]uuid.UUID, 0, len(enrollments))
		for _, e := range enrollments {
			courseIDs = append(courseIDs, e.CourseID)
		}
		if len(courseIDs) == 0 {
			return []models.AssignmentView{}, nil
		}
		assignments, err = s.assignmentRepo.ListByCourses(ctx, courseIDs)
	default:
		return nil, app_errors.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, assignments), nil
}

func (s *CatalogService) GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.AssignmentView, error) {
	assignment, err := s.assignmentRepo.AssignmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canRead(ctx, principal, assignment); err != nil {
		return nil, err
	}
	view := s.buildView(ctx, *assignment)
	return &view, nil
}

// ListForCourse returns the assignments of one course, visible under the same
// rules as GetByID.
func (s *CatalogService) ListForCourse(ctx context.Context, principal models.Principal, courseID uuid.UUID) ([]models.AssignmentView, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	switch principal.Role {
	case models.AdminRole:
	case models.InstructorRole:
		if !access.Owns(principal, course.InstructorID) {
			return nil, app_errors.ErrNotCourseInstructor
		}
	case models.StudentRole:
		enrolled, err := s.enrollmentRepo.Exists(ctx, principal.ID, courseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, app_errors.ErrNotEnrolled
		}
	default:
		return nil, app_errors.ErrForbidden
	}

	assignments, err := s.assignmentRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, assignments), nil
}

// UploadAttachment stores a file for an assignment and records its object key.
// Only the assignment's instructor or an admin may attach files.
func (s *CatalogService) UploadAttachment(ctx context.Context, principal models.Principal, id uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.Attachment, error) {
	assignment, err := s.assignmentRepo.AssignmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Decide(principal, access.ActionUpdate, assignment.InstructorID); err != nil {
		return nil, app_errors.ErrNotAssignmentInstructor
	}

	objectKey, err := s.attachments.Upload(ctx, "assignments", id, filename, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	attachment := models.Attachment{Name: filename, ObjectKey: objectKey}
	assignment.Attachments = append(assignment.Attachments, attachment)
	assignment.UpdatedAt = s.now().UTC()
	if err := s.assignmentRepo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	if url, err := s.attachments.URL(ctx, objectKey); err != nil {
		s.log.ErrorErr("failed to presign attachment", err, "object_key", objectKey)
	} else {
		attachment.URL = url
	}
	return &attachment, nil
}

func (s *CatalogService) canRead(ctx context.Context, principal models.Principal, assignment *models.Assignment) error {
	switch principal.Role {
	case models.AdminRole:
		return nil
	case models.InstructorRole:
		if !access.Owns(principal, assignment.InstructorID) {
			return app_errors.ErrNotAssignmentInstructor
		}
		return nil
	case models.StudentRole:
		enrolled, err := s.enrollmentRepo.Exists(ctx, principal.ID, assignment.CourseID)
		if err != nil {
			return err
		}
		if !enrolled {
			return app_errors.ErrNotEnrolled
		}
		return nil
	default:
		return app_errors.ErrForbidden
	}
}

func (s *CatalogService) buildViews(ctx context.Context, assignments []models.Assignment) []models.AssignmentView {
	views := make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, s.buildView(ctx, a))
	}
	return views
}

func (s *CatalogService) buildView(ctx context.Context, assignment models.Assignment) models.AssignmentView {
	view := models.AssignmentView{Assignment: assignment}
	view.Attachments = s.resolveAttachmentURLs(ctx, assignment.Attachments)

	course, err := s.courseRepo.CourseByID(ctx, assignment.CourseID)
	if err != nil {
		s.log.ErrorErr("failed to resolve course", err, "course_id", assignment.CourseID)
		view.Course = models.CourseRef{ID: assignment.CourseID}
	} else {
		view.Course = course.Ref()
	}

	instructor, err := s.userRepo.UserByID(ctx, assignment.InstructorID)
	if err != nil {
		s.log.ErrorErr("failed to resolve instructor", err, "instructor_id", assignment.InstructorID)
		view.Instructor = models.UserRef{ID: assignment.InstructorID}
	} else {
		view.Instructor = instructor.Ref()
	}
	return view
}

func (s *CatalogService) resolveAttachmentURLs(ctx context.Context, attachments []models.Attachment) []models.Attachment {
	if len(attachments) == 0 {
		return attachments
	}
	resolved := make([]models.Attachment, len(attachments))
	copy(resolved, attachments)
	for i := range resolved {
		if resolved[i].ObjectKey == "" {
			continue
		}
		url, err := s.attachments.URL(ctx, resolved[i].ObjectKey)
		if err != nil {
			s.log.ErrorErr("failed to presign attachment", err, "object_key", resolved[i].ObjectKey)
			continue
		}
		resolved[i].URL = url
	}
	return resolved
}

func (s *CatalogService) publish(eventType string, view models.AssignmentView) {
	s.notifier.Publish(models.Event{
		Type:       eventType,
		Payload:    view,
		OccurredAt: s.now().UTC(),
	})
}
