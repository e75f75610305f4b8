package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ticketColumns = `
        t.id, t.title, t.description, t.state, t.priority, t.assignee_id, COALESCE(u.name, ''),
        t.ai_priority, t.ai_explanation, t.ai_origin, t.created_at, t.updated_at`

const ticketFrom = `
        FROM support_tickets t LEFT JOIN users u ON u.id = t.assignee_id`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO support_tickets (title, description, state, priority, assignee_id, ai_priority, ai_explanation, ai_origin)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.State,
		ticket.Priority,
		ticket.AssigneeID,
		ticket.AIPriority,
		ticket.AIExplanation,
		ticket.AIOrigin,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	for _, tag := range ticket.Tags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO support_ticket_tags (ticket_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			ticket.ID, tag.ID,
		); err != nil {
			return fmt.Errorf("link tag %s: %w", tag.Name, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE support_tickets SET title=$1, description=$2, state=$3, priority=$4, assignee_id=$5,
            ai_priority=$6, ai_explanation=$7, ai_origin=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.State,
		ticket.Priority,
		ticket.AssigneeID,
		ticket.AIPriority,
		ticket.AIExplanation,
		ticket.AIOrigin,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return notFound(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketFrom + ` WHERE t.id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	tags, err := r.tagsFor(ctx, []string{ticket.ID})
	if err != nil {
		return nil, err
	}
	ticket.Tags = tags[ticket.ID]
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY t.created_at DESC, t.id DESC LIMIT %d OFFSET %d`,
		ticketColumns, ticketFrom, filter.Limit, filter.Offset)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result))
	for _, ticket := range result {
		ids = append(ids, ticket.ID)
	}
	tags, err := r.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Tags = tags[result[i].ID]
	}
	return result, nil
}

func (r *ticketRepository) tagsFor(ctx context.Context, ticketIDs []string) (map[string][]domain.Tag, error) {
	out := make(map[string][]domain.Tag, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return out, nil
	}
	const query = `
        SELECT tt.ticket_id, g.id, g.name, g.color
        FROM support_ticket_tags tt JOIN support_tags g ON g.id = tt.tag_id
        WHERE tt.ticket_id = ANY($1::uuid[])
        ORDER BY g.name`
	rows, err := r.pool.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ticketID string
		var tag domain.Tag
		if err := rows.Scan(&ticketID, &tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		out[ticketID] = append(out[ticketID], tag)
	}
	return out, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.State,
		&ticket.Priority,
		&ticket.AssigneeID,
		&ticket.AssigneeName,
		&ticket.AIPriority,
		&ticket.AIExplanation,
		&ticket.AIOrigin,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
