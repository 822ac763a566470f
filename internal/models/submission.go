package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission lifecycle. Returned is reserved for a future send-back-for-revision
// action; no operation currently produces it.
const (
	SubmissionSubmitted = "Submitted"
	SubmissionGraded    = "Graded"
	SubmissionReturned  = "Returned"
)

type Submission struct {
	ID           uuid.UUID    `json:"id"`
	AssignmentID uuid.UUID    `json:"assignment_id"`
	StudentID    uuid.UUID    `json:"student_id"`
	Content      string       `json:"content"`
	Attachments  []Attachment `json:"attachments"`
	SubmittedAt  time.Time    `json:"submitted_at"`
	Grade        *int         `json:"grade,omitempty"`
	Feedback     string       `json:"feedback,omitempty"`
	GradedAt     *time.Time   `json:"graded_at,omitempty"`
	GradedByID   *uuid.UUID   `json:"graded_by_id,omitempty"`
	Status       string       `json:"status"`
}

type SubmissionView struct {
	Submission
	Assignment AssignmentRef `json:"assignment"`
	Student    UserRef       `json:"student"`
	GradedBy   *UserRef      `json:"graded_by,omitempty"`
}
