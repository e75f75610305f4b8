package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/api/rpc"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AuditHandler serves audit trail reads.
type AuditHandler struct {
	service *service.TicketService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(ticketService *service.TicketService) *AuditHandler {
	return &AuditHandler{service: ticketService}
}

// TicketAudit GET|POST /api/support/ticket/:id/audit.
func (h *AuditHandler) TicketAudit(c *fiber.Ctx) error {
	var req dto.TicketAuditRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var limit *int
	if req.Limit != nil {
		n := int(*req.Limit)
		limit = &n
	}

	id := c.Params("id")
	entries, err := h.service.ListTicketAudit(c.UserContext(), id, limit)
	if err != nil {
		return err
	}
	rows := dto.NewAuditEntries(entries, false)
	return rpc.Reply(c, dto.TicketAuditResponse{TicketID: id, Count: len(rows), Audit: rows})
}

// ListAudit GET|POST /api/support/audit.
func (h *AuditHandler) ListAudit(c *fiber.Ctx) error {
	var req dto.AuditRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticketID := req.TicketID
	if ticketID != nil && *ticketID == "" {
		ticketID = nil
	}

	entries, err := h.service.ListAudit(c.UserContext(), ticketID, req.Limit.Int(defaultPageLimit), req.Offset.Int(0))
	if err != nil {
		return err
	}
	rows := dto.NewAuditEntries(entries, true)
	return rpc.Reply(c, dto.AuditListResponse{Count: len(rows), Audit: rows})
}
