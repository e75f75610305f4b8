package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title         string     `json:"title" validate:"required"`
	Description   string     `json:"description" validate:"required"`
	State         string     `json:"state" validate:"omitempty,oneof=new in_progress resolved cancelled"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AIPriority    string     `json:"ai_priority" validate:"omitempty,oneof=low medium high"`
	AIExplanation string     `json:"ai_explanation"`
	AIOrigin      string     `json:"ai_origin" validate:"omitempty,oneof=model rules manual"`
	Assignee      string     `json:"assignee"`
	Tags          StringList `json:"tags"`
}

// UpdateTicketRequest payload. Absent fields are left unchanged; an empty
// assignee clears the assignment.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	State       *string `json:"state" validate:"omitempty,oneof=new in_progress resolved cancelled"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Assignee    *string `json:"assignee"`
}

// ChangeStateRequest payload.
type ChangeStateRequest struct {
	State string `json:"state" validate:"required,oneof=new in_progress resolved cancelled"`
}

// PageRequest carries limit/offset paging.
type PageRequest struct {
	Limit  *FlexInt `json:"limit"`
	Offset *FlexInt `json:"offset"`
}

// AnalyzeRequest payload.
type AnalyzeRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID            string                       `json:"id"`
	Title         string                       `json:"title"`
	Description   string                       `json:"description"`
	State         domain.TicketState           `json:"state"`
	Priority      domain.TicketPriority        `json:"priority"`
	AIPriority    *domain.TicketPriority       `json:"ai_priority"`
	AIExplanation *string                      `json:"ai_explanation"`
	AIOrigin      *domain.ClassificationOrigin `json:"ai_origin"`
	AssigneeID    *string                      `json:"assignee_id"`
	Assignee      *string                      `json:"assignee"`
	Tags          []string                     `json:"tags"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// CreateTicketResponse echoes the stored classification.
type CreateTicketResponse struct {
	ID            string                       `json:"id"`
	Message       string                       `json:"message"`
	Priority      domain.TicketPriority        `json:"priority"`
	AIPriority    *domain.TicketPriority       `json:"ai_priority"`
	AIExplanation *string                      `json:"ai_explanation"`
	AIOrigin      *domain.ClassificationOrigin `json:"ai_origin"`
	Tags          []string                     `json:"tags"`
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Count   int              `json:"count"`
	Records []TicketResponse `json:"records"`
}

// StateChangeResponse reports a transition.
type StateChangeResponse struct {
	ID            string             `json:"id"`
	Message       string             `json:"message"`
	PreviousState domain.TicketState `json:"previous_state"`
	CurrentState  domain.TicketState `json:"current_state"`
	Changed       bool               `json:"changed"`
	Title         string             `json:"title"`
}

// ClassificationResponse is a priority suggestion.
type ClassificationResponse struct {
	Priority    domain.TicketPriority       `json:"priority"`
	Explanation string                      `json:"explanation"`
	Origin      domain.ClassificationOrigin `json:"origin"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		State:         t.State,
		Priority:      t.Priority,
		AIPriority:    t.AIPriority,
		AIExplanation: t.AIExplanation,
		AIOrigin:      t.AIOrigin,
		AssigneeID:    t.AssigneeID,
		Tags:          t.TagNames(),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		name := t.AssigneeName
		resp.Assignee = &name
	}
	return resp
}

// NewTicketListResponse maps a page of tickets.
func NewTicketListResponse(tickets []domain.Ticket) TicketListResponse {
	records := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		records = append(records, NewTicketResponse(&tickets[i]))
	}
	return TicketListResponse{Count: len(records), Records: records}
}

// NewCreateTicketResponse maps a freshly created ticket.
func NewCreateTicketResponse(t *domain.Ticket) CreateTicketResponse {
	return CreateTicketResponse{
		ID:            t.ID,
		Message:       "ticket created",
		Priority:      t.Priority,
		AIPriority:    t.AIPriority,
		AIExplanation: t.AIExplanation,
		AIOrigin:      t.AIOrigin,
		Tags:          t.TagNames(),
	}
}

// NewStateChangeResponse maps a transition outcome.
func NewStateChangeResponse(t *domain.Ticket, previous domain.TicketState, changed bool) StateChangeResponse {
	message := "state changed"
	if !changed {
		message = "state unchanged"
	}
	return StateChangeResponse{
		ID:            t.ID,
		Message:       message,
		PreviousState: previous,
		CurrentState:  t.State,
		Changed:       changed,
		Title:         t.Title,
	}
}
