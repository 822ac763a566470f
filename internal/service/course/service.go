package course

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/access"
	"ClassBridge/pkg/logger"
	"context"
	"time"

	"github.com/google/uuid"
)

const searchLimit = 25

type courseRepo interface {
	NewCourse(ctx context.Context, course *models.Course) (uuid.UUID, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListCoursesByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error)
	ListPublishedCourses(ctx context.Context) ([]models.Course, error)
}

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type enrollmentRepo interface {
	Exists(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

type eventNotifier interface {
	Publish(event models.Event)
}

// Service manages the course catalog. Postgres is the source of truth; the
// search index is refreshed after writes and failures there only log, a course
// must never fail to save because the index was down.
type Service struct {
	log            logger.Log
	courseRepo     courseRepo
	userRepo       userRepo
	enrollmentRepo enrollmentRepo
	search         searchRepo
	notifier       eventNotifier
	now            func() time.Time
}

func NewService(
	log logger.Log,
	c courseRepo,
	u userRepo,
	e enrollmentRepo,
	search searchRepo,
	n eventNotifier,
) *Service {
	return &Service{
		log:            log,
		courseRepo:     c,
		userRepo:       u,
		enrollmentRepo: e,
		search:         search,
		notifier:       n,
		now:            time.Now,
	}
}

type CreateInput struct {
	Title        string
	Description  string
	InstructorID uuid.UUID
	Category     string
	Duration     string
	Content      []models.LessonEntry
	IsPublished  bool
}

// UpdateInput is a partial update. String zero values and nil slices mean
// "leave unchanged". IsPublished uses a pointer so false can still be sent.
type UpdateInput struct {
	Title        string
	Description  string
	InstructorID uuid.UUID
	Category     string
	Duration     string
	Content      []models.LessonEntry
	IsPublished  *bool
}

// Create registers a new course. Admin only; the instructor is assigned
// through the payload, not inferred from the caller.
func (s *Service) Create(ctx context.Context, principal models.Principal, input CreateInput) (*models.CourseView, error) {
	if !access.IsAdmin(principal) {
		return nil, app_errors.ErrForbidden
	}

	instructor, err := s.userRepo.UserByID(ctx, input.InstructorID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	course := models.Course{
		Title:        input.Title,
		Description:  input.Description,
		InstructorID: input.InstructorID,
		Category:     input.Category,
		Duration:     input.Duration,
		Content:      input.Content,
		IsPublished:  input.IsPublished,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.courseRepo.NewCourse(ctx, &course); err != nil {
		return nil, err
	}

	s.reindex(ctx, course)

	view := models.CourseView{Course: course, Instructor: instructor.Ref()}
	s.publish(models.EventCourseCreated, view)
	return &view, nil
}

func (s *Service) Update(ctx context.Context, principal models.Principal, id uuid.UUID, input UpdateInput) (*models.CourseView, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Decide(principal, access.ActionUpdate, course.InstructorID); err != nil {
		return nil, app_errors.ErrNotCourseInstructor
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Category != "" {
		course.Category = input.Category
	}
	if input.Duration != "" {
		course.Duration = input.Duration
	}
	if input.Content != nil {
		course.Content = input.Content
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}
	if input.InstructorID != uuid.Nil && input.InstructorID != course.InstructorID {
		// reassignment moves every assignment anchor implicitly; admins only
		if !access.IsAdmin(principal) {
			return nil, app_errors.ErrForbidden
		}
		if _, err := s.userRepo.UserByID(ctx, input.InstructorID); err != nil {
			return nil, err
		}
		course.InstructorID = input.InstructorID
	}
	course.UpdatedAt = s.now().UTC()

	if err := s.courseRepo.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}

	s.reindex(ctx, *course)

	view := s.buildView(ctx, *course)
	s.publish(models.EventCourseUpdated, view)
	return &view, nil
}

// Delete removes a course. Admin only; enrollments and assignments go with it
// through the store's cascading constraints.
func (s *Service) Delete(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	if !access.IsAdmin(principal) {
		return app_errors.ErrForbidden
	}
	if _, err := s.courseRepo.CourseByID(ctx, id); err != nil {
		return err
	}
	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}

	if err := s.search.Delete(ctx, id); err != nil {
		s.log.ErrorErr("failed to remove course from search index", err, "course_id", id)
	}

	s.notifier.Publish(models.Event{
		Type:       models.EventCourseDeleted,
		Payload:    map[string]uuid.UUID{"id": id},
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// List returns the courses visible to the principal. Admins see everything,
// instructors their own catalog, students every published course plus any
// unpublished one they are enrolled in.
func (s *Service) List(ctx context.Context, principal models.Principal) ([]models.CourseView, error) {
	switch principal.Role {
	case models.AdminRole:
		courses, err := s.courseRepo.ListCourses(ctx)
		if err != nil {
			return nil, err
		}
		return s.buildViews(ctx, courses), nil
	case models.InstructorRole:
		courses, err := s.courseRepo.ListCoursesByInstructor(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		return s.buildViews(ctx, courses), nil
	case models.StudentRole:
		courses, err := s.courseRepo.ListCourses(ctx)
		if err != nil {
			return nil, err
		}
		visible := make([]models.Course, 0, len(courses))
		for _, c := range courses {
			ok, err := s.visibleToStudent(ctx, principal, c)
			if err != nil {
				return nil, err
			}
			if ok {
				visible = append(visible, c)
			}
		}
		return s.buildViews(ctx, visible), nil
	default:
		return nil, app_errors.ErrForbidden
	}
}

// GetByID returns a single course. Any authenticated principal may read any
// course by id; listing is where visibility narrows.
func (s *Service) GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.CourseView, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.buildView(ctx, *course)
	return &view, nil
}

// ListPublished returns the public storefront, no principal required.
func (s *Service) ListPublished(ctx context.Context) ([]models.CourseView, error) {
	courses, err := s.courseRepo.ListPublishedCourses(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, courses), nil
}

// Search runs a full-text query over the index, fetches the hits from Postgres
// and applies the same visibility rules as List. Index entries whose course no
// longer exists are skipped.
func (s *Service) Search(ctx context.Context, principal models.Principal, query string) ([]models.CourseView, error) {
	ids, err := s.search.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		course, err := s.courseRepo.CourseByID(ctx, id)
		if err != nil {
			s.log.Warn("search hit without a stored course", "course_id", id)
			continue
		}
		switch principal.Role {
		case models.AdminRole:
		case models.InstructorRole:
			if !course.IsPublished && !access.Owns(principal, course.InstructorID) {
				continue
			}
		case models.StudentRole:
			ok, err := s.visibleToStudent(ctx, principal, *course)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		default:
			return nil, app_errors.ErrForbidden
		}
		courses = append(courses, *course)
	}
	return s.buildViews(ctx, courses), nil
}

func (s *Service) visibleToStudent(ctx context.Context, principal models.Principal, course models.Course) (bool, error) {
	if course.IsPublished {
		return true, nil
	}
	return s.enrollmentRepo.Exists(ctx, principal.ID, course.ID)
}

func (s *Service) reindex(ctx context.Context, course models.Course) {
	if err := s.search.Index(ctx, course); err != nil {
		s.log.ErrorErr("failed to index course", err, "course_id", course.ID)
	}
}

func (s *Service) buildViews(ctx context.Context, courses []models.Course) []models.CourseView {
	views := make([]models.CourseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, s.buildView(ctx, c))
	}
	return views
}

func (s *Service) buildView(ctx context.Context, course models.Course) models.CourseView {
	view := models.CourseView{Course: course}
	instructor, err := s.userRepo.UserByID(ctx, course.InstructorID)
	if err != nil {
		s.log.ErrorErr("failed to resolve instructor", err, "instructor_id", course.InstructorID)
		view.Instructor = models.UserRef{ID: course.InstructorID}
	} else {
		view.Instructor = instructor.Ref()
	}
	return view
}

func (s *Service) publish(eventType string, view models.CourseView) {
	s.notifier.Publish(models.Event{
		Type:       eventType,
		Payload:    view,
		OccurredAt: s.now().UTC(),
	})
}
