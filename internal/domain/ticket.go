package domain

import "time"

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStateNew        TicketState = "new"
	TicketStateInProgress TicketState = "in_progress"
	TicketStateResolved   TicketState = "resolved"
	TicketStateCancelled  TicketState = "cancelled"
)

// TicketStates lists every state in display order.
var TicketStates = []TicketState{
	TicketStateNew,
	TicketStateInProgress,
	TicketStateResolved,
	TicketStateCancelled,
}

// Valid reports whether s is a known state.
func (s TicketState) Valid() bool {
	for _, candidate := range TicketStates {
		if s == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// TicketPriorities lists every priority from least to most urgent.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	for _, candidate := range TicketPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// ClassificationOrigin records where a priority suggestion came from.
type ClassificationOrigin string

const (
	OriginModel  ClassificationOrigin = "model"
	OriginRules  ClassificationOrigin = "rules"
	OriginManual ClassificationOrigin = "manual"
)

// ClassificationOrigins lists every origin.
var ClassificationOrigins = []ClassificationOrigin{OriginModel, OriginRules, OriginManual}

// Valid reports whether o is a known origin.
func (o ClassificationOrigin) Valid() bool {
	for _, candidate := range ClassificationOrigins {
		if o == candidate {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID            string
	Title         string
	Description   string
	State         TicketState
	Priority      TicketPriority
	AssigneeID    *string
	AssigneeName  string
	Tags          []Tag
	AIPriority    *TicketPriority
	AIExplanation *string
	AIOrigin      *ClassificationOrigin
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TagNames returns the names of the ticket tags in order.
func (t *Ticket) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// Tag labels tickets. Names are globally unique.
type Tag struct {
	ID    string
	Name  string
	Color int
}
