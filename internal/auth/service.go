package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/fkhayef/tripsplit/internal/user"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthenticated, "INVALID_CREDENTIALS", "invalid email or password")
	ErrWeakPassword       = apperror.New(apperror.KindValidation, "WEAK_PASSWORD", "password must be at least 8 characters")
)

// Service registers users and issues session tokens
type Service struct {
	users user.Store
	jwt   *JWTManager
}

// NewService creates a new auth service
func NewService(users user.Store, jwt *JWTManager) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates a new account and signs the user in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if existing != nil {
		return nil, user.ErrEmailAlreadyInUse
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, req.Email, req.Name, hash)
	if err != nil {
		return nil, apperror.Transient(err)
	}

	slog.Info("User registered", "user_id", u.ID)
	return s.session(u)
}

// Login verifies the email and password and issues a session token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Transient(err)
	}
	if u == nil || !CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *Service) session(u *user.User) (*AuthResponse, error) {
	token, expiresAt, err := s.jwt.Generate(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      u.ToResponse(),
	}, nil
}
