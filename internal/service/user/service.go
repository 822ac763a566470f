package user

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/internal/service/access"
	"ClassBridge/pkg/logger"
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Service is the admin-side account management API. Self-service registration
// lives in the auth service; this one may also mint Admin accounts.
type Service struct {
	log  logger.Log
	repo userRepo
}

func NewService(log logger.Log, repo userRepo) *Service {
	return &Service{log: log, repo: repo}
}

type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type UpdateInput struct {
	Name  string
	Email string
	Role  string
}

func validRole(role string) bool {
	switch role {
	case models.AdminRole, models.InstructorRole, models.StudentRole:
		return true
	}
	return false
}

func (s *Service) Create(ctx context.Context, principal models.Principal, input CreateInput) (*models.User, error) {
	if !access.IsAdmin(principal) {
		return nil, app_errors.ErrForbidden
	}
	if !validRole(input.Role) {
		return nil, app_errors.ErrValidation
	}
	if len(input.Password) < 6 || len(input.Password) > 72 {
		return nil, app_errors.ErrIncorrectPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateUser(ctx, models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Role:     input.Role,
	})
}

// GetByID returns a user profile. Non-admins may only read themselves.
func (s *Service) GetByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.User, error) {
	if err := access.Decide(principal, access.ActionRead, id); err != nil {
		return nil, err
	}
	return s.repo.UserByID(ctx, id)
}

func (s *Service) List(ctx context.Context, principal models.Principal) ([]models.User, error) {
	if !access.IsAdmin(principal) {
		return nil, app_errors.ErrForbidden
	}
	return s.repo.ListUsers(ctx)
}

// ListInstructors backs the course creation form's instructor picker.
func (s *Service) ListInstructors(ctx context.Context, principal models.Principal) ([]models.User, error) {
	if !access.IsAdmin(principal) {
		return nil, app_errors.ErrForbidden
	}
	return s.repo.ListUsersByRole(ctx, models.InstructorRole)
}

func (s *Service) Update(ctx context.Context, principal models.Principal, id uuid.UUID, input UpdateInput) (*models.User, error) {
	if !access.IsAdmin(principal) {
		return nil, app_errors.ErrForbidden
	}

	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Role != "" {
		if !validRole(input.Role) {
			return nil, app_errors.ErrValidation
		}
		user.Role = input.Role
	}

	if err := s.repo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	if !access.IsAdmin(principal) {
		return app_errors.ErrForbidden
	}
	if principal.ID == id {
		return app_errors.ErrValidation
	}
	return s.repo.DeleteUser(ctx, id)
}
