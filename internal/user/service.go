package user

import (
	"context"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// Common errors
var (
	ErrUserNotFound      = apperror.New(apperror.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrEmailAlreadyInUse = apperror.New(apperror.KindConflict, "EMAIL_IN_USE", "email already in use")
)

// Store is the user persistence the service depends on
type Store interface {
	Create(ctx context.Context, email, name, passwordHash string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateName(ctx context.Context, id int64, name string) (*User, error)
}

// Service handles user business logic
type Service struct {
	repo Store
}

// NewService creates a new user service with repository dependency injected
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateName changes the display name of the current user
func (s *Service) UpdateName(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	user, err := s.repo.UpdateName(ctx, id, req.Name)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
