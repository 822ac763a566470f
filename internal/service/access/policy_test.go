package access

import (
	"errors"
	"testing"

	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"

	"github.com/google/uuid"
)

func TestDecide(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	tests := []struct {
		name    string
		role    string
		id      uuid.UUID
		action  Action
		ownerID uuid.UUID
		allow   bool
	}{
		{"admin updates anything", models.AdminRole, other, ActionUpdate, owner, true},
		{"admin deletes anything", models.AdminRole, other, ActionDelete, owner, true},
		{"instructor updates own", models.InstructorRole, owner, ActionUpdate, owner, true},
		{"instructor updates foreign", models.InstructorRole, other, ActionUpdate, owner, false},
		{"instructor deletes foreign", models.InstructorRole, other, ActionDelete, owner, false},
		{"instructor grades own", models.InstructorRole, owner, ActionGrade, owner, true},
		{"instructor grades foreign", models.InstructorRole, other, ActionGrade, owner, false},
		{"student reads own", models.StudentRole, owner, ActionRead, owner, true},
		{"student reads foreign", models.StudentRole, other, ActionRead, owner, false},
		{"student creates own", models.StudentRole, owner, ActionCreate, owner, true},
		{"student cannot delete", models.StudentRole, owner, ActionDelete, owner, false},
		{"student cannot grade", models.StudentRole, owner, ActionGrade, owner, false},
		{"unknown role denied", "Auditor", owner, ActionRead, owner, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decide(models.Principal{ID: tt.id, Role: tt.role}, tt.action, tt.ownerID)
			if tt.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tt.allow {
				if err == nil {
					t.Fatal("expected deny, got allow")
				}
				if !errors.Is(err, app_errors.ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			}
		})
	}
}

func TestOwns(t *testing.T) {
	owner := uuid.New()

	if !Owns(models.Principal{ID: uuid.New(), Role: models.AdminRole}, owner) {
		t.Fatal("admin should own everything")
	}
	if !Owns(models.Principal{ID: owner, Role: models.StudentRole}, owner) {
		t.Fatal("student should own their resource")
	}
	if Owns(models.Principal{ID: uuid.New(), Role: models.InstructorRole}, owner) {
		t.Fatal("instructor should not own a foreign resource")
	}
}
