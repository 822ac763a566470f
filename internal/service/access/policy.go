package access

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"

	"github.com/google/uuid"
)

// Action is what a principal intends to do with an ownership-scoped resource.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
	ActionGrade
)

type policy struct {
	allowed   bool
	ownerOnly bool
}

// One predicate table for every entity family. Mutation checks and read-side
// filtering consult the same rules: Admin acts on anything, Instructor and
// Student act only on resources anchored to their own id. What the anchor is
// (course instructor, assignment instructor, submission student) is the
// caller's choice.
var table = map[string]map[Action]policy{
	models.AdminRole: {
		ActionRead:   {allowed: true},
		ActionCreate: {allowed: true},
		ActionUpdate: {allowed: true},
		ActionDelete: {allowed: true},
		ActionGrade:  {allowed: true},
	},
	models.InstructorRole: {
		ActionRead:   {allowed: true, ownerOnly: true},
		ActionCreate: {allowed: true, ownerOnly: true},
		ActionUpdate: {allowed: true, ownerOnly: true},
		ActionDelete: {allowed: true, ownerOnly: true},
		ActionGrade:  {allowed: true, ownerOnly: true},
	},
	models.StudentRole: {
		ActionRead:   {allowed: true, ownerOnly: true},
		ActionCreate: {allowed: true, ownerOnly: true},
		ActionUpdate: {allowed: true, ownerOnly: true},
	},
}

// Decide reports whether the principal may perform action on a resource whose
// ownership anchor is ownerID. It has no side effects and touches no storage.
func Decide(p models.Principal, action Action, ownerID uuid.UUID) error {
	pol, ok := table[p.Role][action]
	if !ok || !pol.allowed {
		return app_errors.ErrForbidden
	}
	if pol.ownerOnly && ownerID != p.ID {
		return app_errors.ErrForbidden
	}
	return nil
}

// Owns is the ownership predicate applied when filtering read results.
func Owns(p models.Principal, ownerID uuid.UUID) bool {
	return p.Role == models.AdminRole || p.ID == ownerID
}

// IsAdmin reports whether the principal bypasses ownership scoping entirely.
func IsAdmin(p models.Principal) bool {
	return p.Role == models.AdminRole
}
