package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const actorKey = "auth_actor"

// ActorMiddleware identifies who performs the request. The bearer token is
// optional; requests without one act as the configured default actor.
type ActorMiddleware struct {
	tokens       *TokenManager
	defaultActor string
}

// NewActorMiddleware constructs middleware.
func NewActorMiddleware(tokens *TokenManager, defaultActorID string) *ActorMiddleware {
	return &ActorMiddleware{tokens: tokens, defaultActor: defaultActorID}
}

// Handle resolves the actor and stores it in the request locals.
func (m *ActorMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		c.Locals(actorKey, domain.Actor{UserID: m.defaultActor})
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(actorKey, domain.Actor{UserID: claims.UserID})
	return c.Next()
}

// ActorFromContext retrieves the acting user. ok is false when the middleware
// did not run.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	return actor, ok
}
