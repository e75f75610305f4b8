package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStateChanged    EventType = "ticket_state_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketUpdated         EventType = "ticket_updated"
)

// AllEventTypes lists every type a subscriber can register for.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStateChanged,
	EventTicketPriorityChanged,
	EventTicketAssigned,
	EventTicketUpdated,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                       `json:"title"`
	Priority domain.TicketPriority        `json:"priority"`
	AIOrigin *domain.ClassificationOrigin `json:"ai_origin,omitempty"`
}

// TicketStateChangedPayload payload.
type TicketStateChangedPayload struct {
	OldState domain.TicketState `json:"old_state"`
	NewState domain.TicketState `json:"new_state"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssigneeID *string `json:"old_assignee_id,omitempty"`
	NewAssigneeID *string `json:"new_assignee_id,omitempty"`
}

// TicketUpdatedPayload lists the tracked fields a write changed.
type TicketUpdatedPayload struct {
	Fields []domain.TrackedField `json:"fields"`
}
