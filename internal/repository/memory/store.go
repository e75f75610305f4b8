// Package memory provides map-backed repositories used when no Postgres DSN is
// configured and by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Store holds every table in memory behind a single lock.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	seq     int64
	tickets map[string]*ticketRow
	tags    map[string]domain.Tag
	users   map[string]domain.User
	audit   []auditRow
}

type ticketRow struct {
	ticket domain.Ticket
	tagIDs []string
	seq    int64
}

type auditRow struct {
	entry domain.AuditEntry
	seq   int64
}

// NewStore returns an empty store seeded with the system user.
func NewStore() *Store {
	s := &Store{
		now:     time.Now,
		tickets: make(map[string]*ticketRow),
		tags:    make(map[string]domain.Tag),
		users:   make(map[string]domain.User),
	}
	s.users[config.SystemUserID] = domain.User{
		ID:        config.SystemUserID,
		Name:      "Sistema",
		Login:     "__system__",
		CreatedAt: s.now(),
	}
	return s
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Tags returns the tag repository view.
func (s *Store) Tags() repository.TagRepository { return tagRepo{s} }

// Audit returns the audit repository view.
func (s *Store) Audit() repository.AuditRepository { return auditRepo{s} }

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// hydrate must be called with the lock held.
func (s *Store) hydrate(row *ticketRow) domain.Ticket {
	ticket := row.ticket
	ticket.AssigneeName = ""
	if ticket.AssigneeID != nil {
		ticket.AssigneeID = ptr(*ticket.AssigneeID)
		if user, ok := s.users[*ticket.AssigneeID]; ok {
			ticket.AssigneeName = user.Name
		}
	}
	ticket.Tags = make([]domain.Tag, 0, len(row.tagIDs))
	for _, id := range row.tagIDs {
		if tag, ok := s.tags[id]; ok {
			ticket.Tags = append(ticket.Tags, tag)
		}
	}
	sort.Slice(ticket.Tags, func(i, j int) bool { return ticket.Tags[i].Name < ticket.Tags[j].Name })
	return ticket
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	row := &ticketRow{ticket: cloneTicket(*ticket), seq: r.s.nextSeq()}
	for _, tag := range ticket.Tags {
		if _, ok := r.s.tags[tag.ID]; !ok {
			return repository.ErrNotFound
		}
		row.tagIDs = append(row.tagIDs, tag.ID)
	}
	if ticket.AssigneeID != nil {
		user, ok := r.s.users[*ticket.AssigneeID]
		if !ok {
			return repository.ErrNotFound
		}
		ticket.AssigneeName = user.Name
	}
	r.s.tickets[ticket.ID] = row
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if ticket.AssigneeID != nil {
		if _, ok := r.s.users[*ticket.AssigneeID]; !ok {
			return repository.ErrNotFound
		}
	}
	updated := cloneTicket(*ticket)
	updated.CreatedAt = row.ticket.CreatedAt
	updated.UpdatedAt = r.s.now()
	row.ticket = updated
	ticket.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ticket := r.s.hydrate(row)
	return &ticket, nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*ticketRow, 0, len(r.s.tickets))
	for _, row := range r.s.tickets {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].ticket.CreatedAt.Equal(rows[j].ticket.CreatedAt) {
			return rows[i].ticket.CreatedAt.After(rows[j].ticket.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	rows = window(rows, filter.Limit, filter.Offset)
	result := make([]domain.Ticket, 0, len(rows))
	for _, row := range rows {
		result = append(result, r.s.hydrate(row))
	}
	return result, nil
}

type tagRepo struct{ s *Store }

func (r tagRepo) Create(_ context.Context, tag *domain.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tags {
		if existing.Name == tag.Name {
			return repository.ErrDuplicate
		}
	}
	tag.ID = uuid.NewString()
	r.s.tags[tag.ID] = *tag
	return nil
}

func (r tagRepo) GetByName(_ context.Context, name string) (*domain.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, tag := range r.s.tags {
		if tag.Name == name {
			found := tag
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[entry.TicketID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.users[entry.UserID]; !ok {
		return repository.ErrNotFound
	}
	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.s.now()
	}
	r.s.audit = append(r.s.audit, auditRow{entry: *entry, seq: r.s.nextSeq()})
	return nil
}

func (r auditRepo) List(_ context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]auditRow, 0, len(r.s.audit))
	for _, row := range r.s.audit {
		if filter.TicketID != nil && row.entry.TicketID != *filter.TicketID {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].entry.Timestamp.Equal(rows[j].entry.Timestamp) {
			return rows[i].entry.Timestamp.After(rows[j].entry.Timestamp)
		}
		return rows[i].seq > rows[j].seq
	})

	rows = window(rows, filter.Limit, filter.Offset)
	result := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry := row.entry
		if ticket, ok := r.s.tickets[entry.TicketID]; ok {
			entry.TicketTitle = ticket.ticket.Title
		}
		if user, ok := r.s.users[entry.UserID]; ok {
			entry.UserName = user.Name
		}
		result = append(result, entry)
	}
	return result, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Login == user.Login {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r userRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Login == login })
}

func (r userRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Name == name })
}

func (r userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		if filter.ActiveOnly && !user.Active {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return window(users, filter.Limit, 0), nil
}

func (r userRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *domain.User
	for _, user := range r.s.users {
		if !match(user) {
			continue
		}
		if found == nil || user.CreatedAt.Before(found.CreatedAt) {
			candidate := user
			found = &candidate
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssigneeID != nil {
		t.AssigneeID = ptr(*t.AssigneeID)
	}
	if t.AIPriority != nil {
		t.AIPriority = ptr(*t.AIPriority)
	}
	if t.AIExplanation != nil {
		t.AIExplanation = ptr(*t.AIExplanation)
	}
	if t.AIOrigin != nil {
		t.AIOrigin = ptr(*t.AIOrigin)
	}
	t.Tags = nil
	return t
}

func ptr[T any](v T) *T { return &v }

// Set returns every repository view of the store.
func (s *Store) Set() repository.Set {
	return repository.Set{Tickets: s.Tickets(), Tags: s.Tags(), Audit: s.Audit(), Users: s.Users()}
}
