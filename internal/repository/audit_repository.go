package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO support_ticket_audit (ticket_id, field_name, old_value, new_value, user_id, change_type, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, timestamp`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.FieldName,
		entry.OldValue,
		entry.NewValue,
		entry.UserID,
		entry.ChangeType,
		entry.Description,
	).Scan(&entry.ID, &entry.Timestamp)
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error) {
	base := `
        SELECT a.id, a.ticket_id, t.title, a.field_name, a.old_value, a.new_value,
               a.user_id, COALESCE(u.name, ''), a.timestamp, a.change_type, a.description
        FROM support_ticket_audit a
        JOIN support_tickets t ON t.id = a.ticket_id
        LEFT JOIN users u ON u.id = a.user_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("a.ticket_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY a.timestamp DESC, a.seq DESC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.TicketTitle,
			&entry.FieldName,
			&entry.OldValue,
			&entry.NewValue,
			&entry.UserID,
			&entry.UserName,
			&entry.Timestamp,
			&entry.ChangeType,
			&entry.Description,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
