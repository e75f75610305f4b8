package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("record already exists")

// TicketFilter captures list parameters.
type TicketFilter struct {
	Limit  int
	Offset int
}

// AuditFilter captures audit search parameters. A zero Limit means no limit.
type AuditFilter struct {
	TicketID *string
	Limit    int
	Offset   int
}

// UserFilter captures assignee search parameters.
type UserFilter struct {
	ActiveOnly bool
	Limit      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// TagRepository persists ticket tags.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
}

// AuditRepository stores audit entries. Entries are append-only.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
}

// UserRepository defines read access to users plus the admin create path.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Set groups the repositories the services are built from.
type Set struct {
	Tickets TicketRepository
	Tags    TagRepository
	Audit   AuditRepository
	Users   UserRepository
}

// NewPostgresSet builds every repository on one pool.
func NewPostgresSet(pool *pgxpool.Pool) Set {
	return Set{
		Tickets: NewTicketRepository(pool),
		Tags:    NewTagRepository(pool),
		Audit:   NewAuditRepository(pool),
		Users:   NewUserRepository(pool),
	}
}
