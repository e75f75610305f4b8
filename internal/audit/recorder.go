// Package audit turns ticket mutations into immutable audit entries.
package audit

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var fieldLabels = map[domain.TrackedField]string{
	domain.FieldState:       "Estado",
	domain.FieldPriority:    "Prioridad",
	domain.FieldAssignee:    "Asignatario",
	domain.FieldTitle:       "Título",
	domain.FieldDescription: "Descripción",
}

// UserLookup resolves user ids to display names.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Input describes one field change. ChangeType and Description are inferred
// when empty.
type Input struct {
	TicketID    string
	Field       domain.TrackedField
	Old         any
	New         any
	ActorID     string
	ChangeType  domain.ChangeType
	Description string
}

// Recorder appends audit entries.
type Recorder struct {
	entries repository.AuditRepository
	users   UserLookup
}

// NewRecorder builds a recorder. users may be nil, in which case assignee ids
// are stored verbatim.
func NewRecorder(entries repository.AuditRepository, users UserLookup) *Recorder {
	return &Recorder{entries: entries, users: users}
}

// Record stores one field change and returns the persisted entry.
func (r *Recorder) Record(ctx context.Context, in Input) (*domain.AuditEntry, error) {
	oldValue := r.stringify(ctx, in.Field, in.Old)
	newValue := r.stringify(ctx, in.Field, in.New)

	changeType := in.ChangeType
	if changeType == "" {
		changeType = ChangeTypeFor(in.Field)
	}
	description := in.Description
	if description == "" {
		description = Describe(in.Field, oldValue, newValue)
	}

	entry := &domain.AuditEntry{
		TicketID:    in.TicketID,
		FieldName:   string(in.Field),
		OldValue:    oldValue,
		NewValue:    newValue,
		UserID:      in.ActorID,
		ChangeType:  changeType,
		Description: description,
	}
	if err := r.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record %s change on ticket %s: %w", in.Field, in.TicketID, err)
	}
	return entry, nil
}

// RecordCreate stores the creation entry for a new ticket.
func (r *Recorder) RecordCreate(ctx context.Context, ticket *domain.Ticket, actorID string) (*domain.AuditEntry, error) {
	entry := &domain.AuditEntry{
		TicketID:    ticket.ID,
		FieldName:   "ticket",
		OldValue:    "",
		NewValue:    ticket.Title,
		UserID:      actorID,
		ChangeType:  domain.ChangeTypeCreate,
		Description: fmt.Sprintf("Ticket creado: %s", ticket.Title),
	}
	if err := r.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record creation of ticket %s: %w", ticket.ID, err)
	}
	return entry, nil
}

// ChangeTypeFor maps a tracked field to its change type.
func ChangeTypeFor(field domain.TrackedField) domain.ChangeType {
	switch field {
	case domain.FieldState:
		return domain.ChangeTypeStateChange
	case domain.FieldAssignee:
		return domain.ChangeTypeAssignment
	default:
		return domain.ChangeTypeUpdate
	}
}

// Describe renders the default human-readable description.
func Describe(field domain.TrackedField, oldValue, newValue string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = string(field)
	}
	return fmt.Sprintf("%s cambiado de \"%s\" a \"%s\"", label, oldValue, newValue)
}

func (r *Recorder) stringify(ctx context.Context, field domain.TrackedField, value any) string {
	if field == domain.FieldAssignee {
		return r.assigneeName(ctx, value)
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (r *Recorder) assigneeName(ctx context.Context, value any) string {
	var id string
	switch v := value.(type) {
	case string:
		id = v
	case *string:
		if v != nil {
			id = *v
		}
	}
	if id == "" {
		return ""
	}
	if r.users == nil {
		return id
	}
	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return user.Name
}
