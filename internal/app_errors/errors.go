package app_errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of these so callers can
// classify with errors.Is without knowing the concrete sentinel.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
var ErrCourseNotFound = fmt.Errorf("course %w", ErrNotFound)
var ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)
var ErrAssignmentNotFound = fmt.Errorf("assignment %w", ErrNotFound)
var ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)

var ErrUserExists = fmt.Errorf("user already exists: %w", ErrConflict)
var ErrAlreadyEnrolled = fmt.Errorf("already enrolled in this course: %w", ErrConflict)
var ErrAlreadySubmitted = fmt.Errorf("assignment already submitted: %w", ErrConflict)

var ErrCourseNotPublished = fmt.Errorf("course is not available for enrollment: %w", ErrInvalidState)
var ErrSubmissionLocked = fmt.Errorf("cannot update a graded submission: %w", ErrInvalidState)

var ErrNotEnrolled = fmt.Errorf("not enrolled in the course: %w", ErrForbidden)
var ErrNotCourseInstructor = fmt.Errorf("not the instructor of this course: %w", ErrForbidden)
var ErrNotAssignmentInstructor = fmt.Errorf("not the instructor of this assignment: %w", ErrForbidden)
var ErrNotSubmissionOwner = fmt.Errorf("not the owner of this submission: %w", ErrForbidden)

var ErrGradeOutOfRange = fmt.Errorf("grade out of range: %w", ErrValidation)
var ErrMissingContent = fmt.Errorf("submission content is required: %w", ErrValidation)
var ErrInvalidTotalPoints = fmt.Errorf("total points must be positive: %w", ErrValidation)
var ErrMissingDueDate = fmt.Errorf("due date is required: %w", ErrValidation)

// Credential-layer errors. Surfaced as Unauthorized by the transport, never by
// the core services.
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")
