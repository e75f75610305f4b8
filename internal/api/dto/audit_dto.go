package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketAuditRequest limits a ticket's audit trail. No limit means all
// entries.
type TicketAuditRequest struct {
	Limit *FlexInt `json:"limit"`
}

// AuditRequest filters the global audit log.
type AuditRequest struct {
	Limit    *FlexInt `json:"limit"`
	Offset   *FlexInt `json:"offset"`
	TicketID *string  `json:"ticket_id"`
}

// AuditEntryResponse is one audit row.
type AuditEntryResponse struct {
	ID          string            `json:"id"`
	TicketID    string            `json:"ticket_id"`
	TicketTitle string            `json:"ticket_title,omitempty"`
	FieldName   string            `json:"field_name"`
	OldValue    string            `json:"old_value"`
	NewValue    string            `json:"new_value"`
	UserID      string            `json:"user_id"`
	UserName    string            `json:"user_name"`
	Timestamp   time.Time         `json:"timestamp"`
	ChangeType  domain.ChangeType `json:"change_type"`
	Description string            `json:"description"`
}

// TicketAuditResponse lists one ticket's trail.
type TicketAuditResponse struct {
	TicketID string               `json:"ticket_id"`
	Count    int                  `json:"count"`
	Audit    []AuditEntryResponse `json:"audit"`
}

// AuditListResponse lists entries across tickets.
type AuditListResponse struct {
	Count int                  `json:"count"`
	Audit []AuditEntryResponse `json:"audit"`
}

// NewAuditEntries maps entries. withTitle controls whether the ticket title
// is included.
func NewAuditEntries(entries []domain.AuditEntry, withTitle bool) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		row := AuditEntryResponse{
			ID:          e.ID,
			TicketID:    e.TicketID,
			FieldName:   e.FieldName,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			UserID:      e.UserID,
			UserName:    e.UserName,
			Timestamp:   e.Timestamp,
			ChangeType:  e.ChangeType,
			Description: e.Description,
		}
		if withTitle {
			row.TicketTitle = e.TicketTitle
		}
		out = append(out, row)
	}
	return out
}
