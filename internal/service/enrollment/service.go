package enrollment

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/access"
	"ClassBridge/pkg/logger"
	"context"
	"time"

	"github.com/google/uuid"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type enrollmentRepo interface {
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Enrollment, error)
}

type eventNotifier interface {
	Publish(event models.Event)
}

// LedgerService creates and queries enrollments. The one-enrollment-per
// (student, course) rule is enforced by the store's unique index, not here;
// this service only translates and orders the checks around it.
type LedgerService struct {
	log            logger.Log
	courseRepo     courseRepo
	userRepo       userRepo
	enrollmentRepo enrollmentRepo
	notifier       eventNotifier
	now            func() time.Time
}

func NewLedgerService(log logger.Log, c courseRepo, u userRepo, e enrollmentRepo, n eventNotifier) *LedgerService {
	return &LedgerService{
		log:            log,
		courseRepo:     c,
		userRepo:       u,
		enrollmentRepo: e,
		notifier:       n,
		now:            time.Now,
	}
}

// Enroll enrolls the principal into a published course. A concurrent duplicate
// enroll loses at the unique index and comes back as ErrAlreadyEnrolled.
func (s *LedgerService) Enroll(ctx context.Context, principal models.Principal, courseID uuid.UUID) (*models.EnrollmentView, error) {
	if err := access.Decide(principal, access.ActionCreate, principal.ID); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, app_errors.ErrCourseNotPublished
	}

	enrollment := models.Enrollment{
		StudentID:  principal.ID,
		CourseID:   courseID,
		EnrolledAt: s.now().UTC(),
		Progress:   0,
		Status:     models.EnrollmentActive,
	}
	if err := s.enrollmentRepo.CreateEnrollment(ctx, &enrollment); err != nil {
		return nil, err
	}

	view := models.EnrollmentView{
		Enrollment: enrollment,
		Course:     course.Ref(),
		Student:    s.studentRef(ctx, principal.ID),
	}

	s.notifier.Publish(models.Event{
		Type:       models.EventEnrollmentCreated,
		Payload:    view,
		OccurredAt: s.now().UTC(),
	})
	return &view, nil
}

// ListForStudent returns the enrollments of studentID with course references
// resolved. Non-admin principals can only read their own ledger.
func (s *LedgerService) ListForStudent(ctx context.Context, principal models.Principal, studentID uuid.UUID) ([]models.EnrollmentView, error) {
	if err := access.Decide(principal, access.ActionRead, studentID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student := s.studentRef(ctx, studentID)
	views := make([]models.EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		view := models.EnrollmentView{Enrollment: e, Student: student}
		course, err := s.courseRepo.CourseByID(ctx, e.CourseID)
		if err != nil {
			s.log.ErrorErr("ListForStudent: failed to resolve course", err, "course_id", e.CourseID)
		} else {
			view.Course = course.Ref()
		}
		views = append(views, view)
	}
	return views, nil
}

// ListForCourse returns a course's roster, visible to admins and the course's
// own instructor.
func (s *LedgerService) ListForCourse(ctx context.Context, principal models.Principal, courseID uuid.UUID) ([]models.EnrollmentView, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := access.Decide(principal, access.ActionRead, course.InstructorID); err != nil {
		return nil, app_errors.ErrNotCourseInstructor
	}

	enrollments, err := s.enrollmentRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	courseRef := course.Ref()
	views := make([]models.EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		views = append(views, models.EnrollmentView{
			Enrollment: e,
			Course:     courseRef,
			Student:    s.studentRef(ctx, e.StudentID),
		})
	}
	return views, nil
}

func (s *LedgerService) studentRef(ctx context.Context, id uuid.UUID) models.UserRef {
	student, err := s.userRepo.UserByID(ctx, id)
	if err != nil {
		s.log.ErrorErr("failed to resolve student", err, "student_id", id)
		return models.UserRef{ID: id}
	}
	return student.Ref()
}
