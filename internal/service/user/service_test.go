package user

import (
	"context"
	"errors"
	"testing"

	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[uuid.UUID]models.User
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, app_errors.ErrUserExists
		}
	}
	u.ID = uuid.New()
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeUserRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) ListUsers(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) ListUsersByRole(_ context.Context, role string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, u models.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return app_errors.ErrUserNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return app_errors.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func newService() (*Service, *fakeUserRepo, models.Principal) {
	repo := &fakeUserRepo{users: map[uuid.UUID]models.User{}}
	admin := models.Principal{ID: uuid.New(), Role: models.AdminRole}
	repo.users[admin.ID] = models.User{ID: admin.ID, Name: "Root", Role: models.AdminRole}
	return NewService(logger.New("local"), repo), repo, admin
}

func TestCreateHashesPassword(t *testing.T) {
	svc, repo, admin := newService()

	created, err := svc.Create(context.Background(), admin, CreateInput{
		Name:     "Ada Teacher",
		Email:    "ada@example.com",
		Password: "secret1",
		Role:     models.InstructorRole,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored := repo.users[created.ID]
	if stored.Password == "secret1" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")) != nil {
		t.Fatal("stored hash does not verify")
	}
}

func TestCreateAdminOnly(t *testing.T) {
	svc, _, _ := newService()
	student := models.Principal{ID: uuid.New(), Role: models.StudentRole}

	_, err := svc.Create(context.Background(), student, CreateInput{
		Name: "x", Email: "x@example.com", Password: "secret1", Role: models.StudentRole,
	})
	if !errors.Is(err, app_errors.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestCreateRejectsBadRole(t *testing.T) {
	svc, _, admin := newService()

	_, err := svc.Create(context.Background(), admin, CreateInput{
		Name: "x", Email: "x@example.com", Password: "secret1", Role: "Superuser",
	})
	if !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestGetByIDSelfOrAdmin(t *testing.T) {
	svc, repo, admin := newService()
	student := models.Principal{ID: uuid.New(), Role: models.StudentRole}
	repo.users[student.ID] = models.User{ID: student.ID, Name: "Bo", Role: models.StudentRole}

	if _, err := svc.GetByID(context.Background(), student, student.ID); err != nil {
		t.Errorf("self read: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), admin, student.ID); err != nil {
		t.Errorf("admin read: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), student, admin.ID); !errors.Is(err, app_errors.ErrForbidden) {
		t.Errorf("foreign read: err = %v, want forbidden", err)
	}
}

func TestListInstructors(t *testing.T) {
	svc, repo, admin := newService()
	instructorID := uuid.New()
	repo.users[instructorID] = models.User{ID: instructorID, Name: "Ada", Role: models.InstructorRole}

	instructors, err := svc.ListInstructors(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListInstructors: %v", err)
	}
	if len(instructors) != 1 || instructors[0].Role != models.InstructorRole {
		t.Errorf("got %+v", instructors)
	}
}

func TestDeleteSelfRejected(t *testing.T) {
	svc, _, admin := newService()

	err := svc.Delete(context.Background(), admin, admin.ID)
	if !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("self delete: err = %v, want validation error", err)
	}
}
