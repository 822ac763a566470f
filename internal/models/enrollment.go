package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentActive    = "Active"
	EnrollmentCompleted = "Completed"
	EnrollmentDropped   = "Dropped"
)

type Enrollment struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   uuid.UUID  `json:"student_id"`
	CourseID    uuid.UUID  `json:"course_id"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	Progress    int        `json:"progress"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type EnrollmentView struct {
	Enrollment
	Course  CourseRef `json:"course"`
	Student UserRef   `json:"student"`
}
