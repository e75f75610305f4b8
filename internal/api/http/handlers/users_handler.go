package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/api/rpc"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// UsersHandler exposes login and the assignee directory.
type UsersHandler struct {
	auth        *service.AuthService
	assignments *service.AssignmentService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, assignments *service.AssignmentService) *UsersHandler {
	return &UsersHandler{auth: authService, assignments: assignments}
}

// Login handles POST /api/support/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserResponse(result.User),
	})
}

// Assignees handles POST /api/support/assignees.
func (h *UsersHandler) Assignees(c *fiber.Ctx) error {
	var req dto.AssigneesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	limit := defaultPageLimit
	if req.Limit != nil {
		limit, _ = service.ClampPage(int(*req.Limit), 0)
	}
	users, err := h.assignments.ListAssignees(c.UserContext(), req.OnlyActive.Bool(true), limit)
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.NewUserListResponse(users))
}
