package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/api/rpc"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const defaultPageLimit = 100

// bind decodes the request params into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := rpc.Bind(c, req); err != nil {
		return err
	}
	return dto.Validate(req)
}

func actorID(c *fiber.Ctx) (string, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok || actor.UserID == "" {
		return "", apperrors.NewUnauthorized("actor required")
	}
	return actor.UserID, nil
}
