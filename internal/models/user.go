package models

import "github.com/google/uuid"

const (
	AdminRole      = "Admin"
	InstructorRole = "Instructor"
	StudentRole    = "Student"
)

type User struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Role     string    `json:"role"`
}

// Principal is the authenticated identity a request acts as. It is resolved
// by the auth middleware and passed explicitly to every service operation.
type Principal struct {
	ID   uuid.UUID
	Role string
}

// UserRef is the minimal display projection of a user embedded in views.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
