package models

import (
	"time"

	"github.com/google/uuid"
)

type LessonEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Order       int    `json:"order"`
}

type Course struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	InstructorID uuid.UUID     `json:"instructor_id"`
	Category     string        `json:"category"`
	Duration     string        `json:"duration"`
	Content      []LessonEntry `json:"content"`
	IsPublished  bool          `json:"is_published"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type CourseRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

func (c Course) Ref() CourseRef {
	return CourseRef{ID: c.ID, Title: c.Title}
}

// CourseView is a course with its instructor resolved for display.
type CourseView struct {
	Course
	Instructor UserRef `json:"instructor"`
}
