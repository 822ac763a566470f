package submission

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

type assignmentRepo interface {
	AssignmentByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
}

type enrollmentRepo interface {
	Exists(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
}

type submissionRepo interface {
	NewSubmission(ctx context.Context, submission *models.Submission) (uuid.UUID, error)
	SubmissionByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, attachments []models.Attachment, submittedAt time.Time) error
	SetGrade(ctx context.Context, id uuid.UUID, grade int, feedback string, gradedBy uuid.UUID, gradedAt time.Time) error
	UpdateAttachments(ctx context.Context, id uuid.UUID, attachments []models.Attachment) error
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Submission, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Submission, error)
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

// WorkflowService runs the submission state machine:
// Submitted -> Graded (repeatable), with Returned declared but unreachable
// until a send-back action exists. Uniqueness per (assignment, student) is the
// store's unique index.
type WorkflowService struct {
	log            logger.Log
	assignmentRepo assignmentRepo
	enrollmentRepo enrollmentRepo
	submissionRepo submissionRepo
	userRepo       userRepo
	attachments    attachmentStore
	notifier       eventNotifier
	now            func() time.Time
}

func NewWorkflowService(
	log logger.Log,
	a assignmentRepo,
	e enrollmentRepo,
	sub submissionRepo,
	u userRepo,
	att attachmentStore,
	n eventNotifier,
) *WorkflowService {
	return &WorkflowService{
		log:            log,
		assignmentRepo: a,
		enrollmentRepo: e,
		submissionRepo: sub,
		userRepo:       u,
		attachments:    att,
		notifier:       n,
		now:            time.Now,
	}
}

type CreateInput struct {
	AssignmentID uuid.UUID
	Content      string
	Attachments  []models.Attachment
}

type ReviseInput struct {
	Content     string
	Attachments []models.Attachment
}

// Create submits an assignment for the principal. The enrollment gate checks
// existence only; a Dropped or Completed enrollment still counts.
func (s *WorkflowService) Create(ctx context.Context, principal models.Principal, input CreateInput) (*models.SubmissionView, error) {
	if err := access.Decide(principal, access.ActionCreate, principal.ID); err != nil {
		return nil, err
	}
	if input.Content == "" {
		return nil, app_errors.ErrMissingContent
	}

	assignment, err := s.assignmentRepo.AssignmentByID(ctx, input.AssignmentID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, principal.ID, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, app_errors.ErrNotEnrolled
	}

	submission := models.Submission{
		AssignmentID: input.AssignmentID,
		StudentID:    principal.ID,
		Content:      input.Content,
		Attachments:  input.Attachments,
		SubmittedAt:  s.now().UTC(),
		Status:       models.SubmissionSubmitted,
	}
	if _, err := s.submissionRepo.NewSubmission(ctx, &submission); err != nil {
		return nil, err
	}

	view := s.buildView(ctx, submission)
	s.publish(models.EventSubmissionCreated, view)
	return &view, nil
}

// ReviseContent replaces a submission's content while it is still ungraded.
// Empty fields keep their prior values (the update payload cannot clear a
// field; long-standing quirk, kept on purpose).
func (s *WorkflowService) ReviseContent(ctx context.Context, principal models.Principal, id uuid.UUID, input ReviseInput) (*models.SubmissionView, error) {
	submission, err := s.submissionRepo.SubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.StudentID != principal.ID {
		return nil, app_errors.ErrNotSubmissionOwner
	}
	if submission.Status != models.SubmissionSubmitted {
		return nil, app_errors.ErrSubmissionLocked
	}

	if input.Content != "" {
		submission.Content = input.Content
	}
	if len(input.Attachments) > 0 {
		submission.Attachments = input.Attachments
	}
	submission.SubmittedAt = s.now().UTC()

	if err := s.submissionRepo.UpdateContent(ctx, id, submission.Content, submission.Attachments, submission.SubmittedAt); err != nil {
		return nil, err
	}

	view := s.buildView(ctx, *submission)
	s.publish(models.EventSubmissionUpdated, view)
	return &view, nil
}

// Grade records a grade and moves the submission to Graded. Re-grading a
// Graded submission overwrites the previous grade; there is no history.
func (s *WorkflowService) Grade(ctx context.Context, principal models.Principal, id uuid.UUID, grade int, feedback string) (*models.SubmissionView, error) {
	submission, err := s.submissionRepo.SubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assignment, err := s.assignmentRepo.AssignmentByID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, err
	}
	if err := access.Decide(principal, access.ActionGrade, assignment.InstructorID); err != nil {
		return nil, app_errors.ErrNotAssignmentInstructor
	}
	if submission.Status == models.SubmissionReturned {
		return nil, app_errors.ErrSubmissionLocked
	}
	if grade < 0 || grade > assignment.TotalPoints {
		return nil, app_errors.ErrGradeOutOfRange
	}

	gradedAt := s.now().UTC()
	if err := s.submissionRepo.SetGrade(ctx, id, grade, feedback, principal.ID, gradedAt); err != nil {
		return nil, err
	}

	submission.Grade = &grade
	submission.Feedback = feedback
	submission.GradedAt = &gradedAt
	gradedBy := principal.ID
	submission.GradedByID = &gradedBy
	submission.Status = models.SubmissionGraded

	view := s.buildView(ctx, *submission)
	s.publish(models.EventSubmissionGraded, view)
	return &view, nil
}

// List returns the submissions visible to the principal: all for admins, those
// of owned assignments for instructors, the principal's own for students.
func (s *WorkflowService) List(ctx context.Context, principal models.Principal) ([]models.SubmissionView, error) {
	var (
		submissions []models.Submission
		err         error
	)
	switch principal.Role {
	case models.AdminRole:
		submissions, err = s.submissionRepo.ListSubmissions(ctx)
	case models.InstructorRole:
		submissions, err = s.submissionRepo.ListByInstructor(ctx, principal.ID)
	case models.StudentRole:
		submissions, err = s.submissionRepo.ListByStudent(ctx, principal.ID)
	default:
		return nil, app_errors.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, submissions), nil
}

func (s *WorkflowService) GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.SubmissionView, error) {
	submission, err := s.submissionRepo.SubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch principal.Role {
	case models.StudentRole:
		if submission.StudentID != principal.ID {
			return nil, app_errors.ErrNotSubmissionOwner
		}
	case models.InstructorRole:
		assignment, err := s.assignmentRepo.AssignmentByID(ctx, submission.AssignmentID)
		if err != nil {
			return nil, err
		}
		if !access.Owns(principal, assignment.InstructorID) {
			return nil, app_errors.ErrNotAssignmentInstructor
		}
	}
	view := s.buildView(ctx, *submission)
	return &view, nil
}

// ListForAssignment returns every submission for one assignment, visible to
// admins and the assignment's instructor.
func (s *WorkflowService) ListForAssignment(ctx context.Context, principal models.Principal, assignmentID uuid.UUID) ([]models.SubmissionView, error) {
	assignment, err := s.assignmentRepo.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := access.Decide(principal, access.ActionRead, assignment.InstructorID); err != nil {
		return nil, app_errors.ErrNotAssignmentInstructor
	}
	submissions, err := s.submissionRepo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, submissions), nil
}

// UploadAttachment stores a file for an ungraded submission owned by the
// principal and records its object key.
func (s *WorkflowService) UploadAttachment(ctx context.Context, principal models.Principal, id uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.Attachment, error) {
	submission, err := s.submissionRepo.SubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.StudentID != principal.ID {
		return nil, app_errors.ErrNotSubmissionOwner
	}
	if submission.Status != models.SubmissionSubmitted {
		return nil, app_errors.ErrSubmissionLocked
	}

	objectKey, err := s.attachments.Upload(ctx, "submissions", id, filename, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	attachment := models.Attachment{Name: filename, ObjectKey: objectKey}
	updated := append(submission.Attachments, attachment)
	if err := s.submissionRepo.UpdateAttachments(ctx, id, updated); err != nil {
		return nil, err
	}

	if url, err := s.attachments.URL(ctx, objectKey); err != nil {
		s.log.ErrorErr("failed to presign attachment", err, "object_key", objectKey)
	} else {
		attachment.URL = url
	}
	return &attachment, nil
}

func (s *WorkflowService) buildViews(ctx context.Context, submissions []models.Submission) []models.SubmissionView {
	views := make([]models.SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		views = append(views, s.buildView(ctx, submission))
	}
	return views
}

func (s *WorkflowService) buildView(ctx context.Context, submission models.Submission) models.SubmissionView {
	view := models.SubmissionView{Submission: submission}
	view.Attachments = s.resolveAttachmentURLs(ctx, submission.Attachments)

	assignment, err := s.assignmentRepo.AssignmentByID(ctx, submission.AssignmentID)
	if err != nil {
		s.log.ErrorErr("failed to resolve assignment", err, "assignment_id", submission.AssignmentID)
	} else {
		view.Assignment = assignment.Ref()
	}

	student, err := s.userRepo.UserByID(ctx, submission.StudentID)
	if err != nil {
		s.log.ErrorErr("failed to resolve student", err, "student_id", submission.StudentID)
		view.Student = models.UserRef{ID: submission.StudentID}
	} else {
		view.Student = student.Ref()
	}

	if submission.GradedByID != nil {
		grader, err := s.userRepo.UserByID(ctx, *submission.GradedByID)
		if err != nil {
			s.log.ErrorErr("failed to resolve grader", err, "graded_by", *submission.GradedByID)
		} else {
			ref := grader.Ref()
			view.GradedBy = &ref
		}
	}
	return view
}

func (s *WorkflowService) resolveAttachmentURLs(ctx context.Context, attachments []models.Attachment) []models.Attachment {
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

func (s *WorkflowService) publish(eventType string, view models.SubmissionView) {
	s.notifier.Publish(models.Event{
		Type:       eventType,
		Payload:    view,
		OccurredAt: s.now().UTC(),
	})
}
