package models

import "time"

// Domain event types, named by entity and verb.
const (
	EventCourseCreated     = "CourseCreated"
	EventCourseUpdated     = "CourseUpdated"
	EventCourseDeleted     = "CourseDeleted"
	EventEnrollmentCreated = "EnrollmentCreated"
	EventAssignmentCreated = "AssignmentCreated"
	EventAssignmentUpdated = "AssignmentUpdated"
	EventAssignmentDeleted = "AssignmentDeleted"
	EventSubmissionCreated = "SubmissionCreated"
	EventSubmissionUpdated = "SubmissionUpdated"
	EventSubmissionGraded  = "SubmissionGraded"
)

// Event is emitted after a committed mutation. Payload carries the resulting
// entity view, or only the id for deletions.
type Event struct {
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}
