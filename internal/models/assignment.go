package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment references an uploaded object. URL is filled at read time with a
// presigned link and is never persisted.
type Attachment struct {
	Name      string `json:"name"`
	ObjectKey string `json:"object_key"`
	URL       string `json:"url,omitempty"`
}

type Assignment struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	CourseID     uuid.UUID    `json:"course_id"`
	InstructorID uuid.UUID    `json:"instructor_id"`
	DueDate      time.Time    `json:"due_date"`
	TotalPoints  int          `json:"total_points"`
	Attachments  []Attachment `json:"attachments"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type AssignmentRef struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	DueDate     time.Time `json:"due_date"`
	TotalPoints int       `json:"total_points"`
}

func (a Assignment) Ref() AssignmentRef {
	return AssignmentRef{ID: a.ID, Title: a.Title, DueDate: a.DueDate, TotalPoints: a.TotalPoints}
}

type AssignmentView struct {
	Assignment
	Course     CourseRef `json:"course"`
	Instructor UserRef   `json:"instructor"`
}
