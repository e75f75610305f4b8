package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UserService manages user accounts. The HTTP surface only reads users; the
// admin CLI creates them.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// UserCreateInput describes a new account. An empty Password creates a user
// that can be assigned tickets but cannot log in.
type UserCreateInput struct {
	Name     string
	Email    string
	Login    string
	Password string
	Active   bool
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, users repository.UserRepository) *UserService {
	return &UserService{users: users, bcryptCost: cfg.BcryptCost}
}

// CreateUser validates and stores a user.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	login := strings.TrimSpace(input.Login)
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if login == "" {
		missing = append(missing, "login")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}

	user := &domain.User{
		Name:   name,
		Email:  strings.TrimSpace(input.Email),
		Login:  login,
		Active: input.Active,
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewValidationError("login already in use", map[string]any{"login": login})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
