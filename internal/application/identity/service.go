package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/outpost-commerce/backend/internal/domain/identity"
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/infrastructure/auth"
)

// errBadCredentials deliberately does not say which half was wrong
var errBadCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")

// Service handles account registration and login
type Service struct {
	users identity.Repository
	jwt   *auth.JWTService
}

// NewService creates a new identity service
func NewService(users identity.Repository, jwt *auth.JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates an account and logs the user straight in
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.users.FindByEmail(ctx, email); err != nil {
		if !isNotFound(err) {
			return nil, err
		}
	} else if existing != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Email is already registered")
	}

	user, err := identity.NewUser(req.Name, email, req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login verifies credentials and issues a bearer token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		return nil, errBadCredentials
	}

	user.RecordLoginSuccess()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *Service) issue(user *identity.User) (*AuthResponse, error) {
	issued, err := s.jwt.GenerateToken(auth.GenerateTokenInput{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	resp := toAuthResponse(user, issued.Token)
	return &resp, nil
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code
}
