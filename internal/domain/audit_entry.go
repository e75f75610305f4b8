package domain

import "time"

// ChangeType captures what kind of mutation an audit entry describes.
type ChangeType string

const (
	ChangeTypeCreate      ChangeType = "create"
	ChangeTypeUpdate      ChangeType = "update"
	ChangeTypeStateChange ChangeType = "state_change"
	ChangeTypeAssignment  ChangeType = "assignment"
)

// TrackedField names a ticket field whose mutations are audited.
type TrackedField string

const (
	FieldState       TrackedField = "state"
	FieldPriority    TrackedField = "priority"
	FieldAssignee    TrackedField = "assignee"
	FieldTitle       TrackedField = "title"
	FieldDescription TrackedField = "description"
)

// TrackedFields lists audited fields in the order entries are emitted.
var TrackedFields = []TrackedField{
	FieldState,
	FieldPriority,
	FieldAssignee,
	FieldTitle,
	FieldDescription,
}

// AuditEntry is an immutable audit trail entry for one field of one ticket.
type AuditEntry struct {
	ID          string
	TicketID    string
	TicketTitle string
	FieldName   string
	OldValue    string
	NewValue    string
	UserID      string
	UserName    string
	Timestamp   time.Time
	ChangeType  ChangeType
	Description string
}
