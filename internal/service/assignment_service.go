package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	defaultAssigneeLimit = 100
	maxAssigneeLimit     = 500
)

// AssignmentService resolves and lists the users tickets can be assigned to.
type AssignmentService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{users: deps.UserRepo, logger: logger}
}

// ListAssignees returns users ordered by name. A non-positive limit uses the
// default; larger limits are capped.
func (s *AssignmentService) ListAssignees(ctx context.Context, onlyActive bool, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = defaultAssigneeLimit
	}
	if limit > maxAssigneeLimit {
		limit = maxAssigneeLimit
	}
	users, err := s.users.List(ctx, repository.UserFilter{ActiveOnly: onlyActive, Limit: limit})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ResolveAssignee maps a reference to a user id. References that parse as a
// UUID must name an existing user; anything else is matched against user
// names and silently ignored when nothing matches. A blank reference yields
// nil. Users are never created here.
func (s *AssignmentService) ResolveAssignee(ctx context.Context, ref string) (*string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	if id, err := uuid.Parse(ref); err == nil {
		user, err := s.users.GetByID(ctx, id.String())
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("unknown assignee", map[string]any{"assignee": ref})
		}
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return &user.ID, nil
	}

	user, err := s.users.FindByName(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug("assignee name not found; ignoring", zap.String("assignee", ref))
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &user.ID, nil
}
