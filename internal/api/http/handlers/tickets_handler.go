package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/api/rpc"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/support/ticket.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		State:         domain.TicketState(req.State),
		Priority:      domain.TicketPriority(req.Priority),
		AIPriority:    domain.TicketPriority(req.AIPriority),
		AIExplanation: req.AIExplanation,
		AIOrigin:      domain.ClassificationOrigin(req.AIOrigin),
		Assignee:      req.Assignee,
		Tags:          req.Tags,
	})
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.NewCreateTicketResponse(ticket))
}

// ListTickets POST /api/support/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var req dto.PageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), req.Limit.Int(defaultPageLimit), req.Offset.Int(0))
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.NewTicketListResponse(tickets))
}

// GetTicket GET|POST /api/support/ticket/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.NewTicketResponse(ticket))
}

// UpdateTicket POST /api/support/ticket/:id/update.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	patch := service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
	}
	if req.State != nil {
		state := domain.TicketState(*req.State)
		patch.State = &state
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		patch.Priority = &priority
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), actor, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.NewTicketResponse(ticket))
}

// ChangeState POST /api/support/ticket/:id/change_state.
func (h *TicketsHandler) ChangeState(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	change, err := h.service.ChangeState(c.UserContext(), actor, c.Params("id"), domain.TicketState(req.State))
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.NewStateChangeResponse(change.Ticket, change.PreviousState, change.Changed))
}

// RunAction POST /api/support/ticket/:id/action/:action.
func (h *TicketsHandler) RunAction(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	var transition func() (*service.StateChange, error)
	switch c.Params("action") {
	case "set_new":
		transition = func() (*service.StateChange, error) { return h.service.MarkNew(ctx, actor, id) }
	case "start_progress":
		transition = func() (*service.StateChange, error) { return h.service.StartProgress(ctx, actor, id) }
	case "resolve":
		transition = func() (*service.StateChange, error) { return h.service.Resolve(ctx, actor, id) }
	case "cancel":
		transition = func() (*service.StateChange, error) { return h.service.Cancel(ctx, actor, id) }
	case "recalculate_priority":
		ticket, err := h.service.RecalculatePriority(ctx, actor, id)
		if err != nil {
			return err
		}
		return rpc.Reply(c, dto.NewTicketResponse(ticket))
	default:
		return apperrors.NewInvalidChoice("action", []string{"set_new", "start_progress", "resolve", "cancel", "recalculate_priority"})
	}

	change, err := transition()
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.NewStateChangeResponse(change.Ticket, change.PreviousState, change.Changed))
}

// Analyze POST /api/support/analyze.
func (h *TicketsHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.service.Analyze(c.UserContext(), req.Title, req.Description)
	if err != nil {
		return err
	}
	return rpc.Reply(c, dto.ClassificationResponse{
		Priority:    result.Priority,
		Explanation: result.Explanation,
		Origin:      result.Origin,
	})
}
