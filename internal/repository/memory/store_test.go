package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func steppingClock() func() time.Time {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		base = base.Add(time.Second)
		return base
	}
}

func TestTicketsListNewestFirst(t *testing.T) {
	store := NewStore()
	store.SetClock(steppingClock())
	ctx := context.Background()
	repo := store.Tickets()

	for _, title := range []string{"first", "second", "third"} {
		ticket := &domain.Ticket{Title: title, Description: "d", State: domain.TicketStateNew, Priority: domain.TicketPriorityLow}
		if err := repo.Create(ctx, ticket); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.List(ctx, repository.TicketFilter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Title != "third" || got[1].Title != "second" {
		t.Fatalf("unexpected order: %+v", got)
	}

	got, _ = repo.List(ctx, repository.TicketFilter{Limit: 10, Offset: 2})
	if len(got) != 1 || got[0].Title != "first" {
		t.Fatalf("offset window wrong: %+v", got)
	}
}

func TestTicketsUpdateUnknown(t *testing.T) {
	store := NewStore()
	err := store.Tickets().Update(context.Background(), &domain.Ticket{ID: "missing"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTicketsHydrateAssigneeAndTags(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &domain.User{Name: "Ana", Login: "ana", Active: true}
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	tag := &domain.Tag{Name: "red"}
	if err := store.Tags().Create(ctx, tag); err != nil {
		t.Fatalf("Create tag: %v", err)
	}

	ticket := &domain.Ticket{
		Title:       "t",
		Description: "d",
		State:       domain.TicketStateNew,
		Priority:    domain.TicketPriorityHigh,
		AssigneeID:  &user.ID,
		Tags:        []domain.Tag{*tag},
	}
	if err := store.Tickets().Create(ctx, ticket); err != nil {
		t.Fatalf("Create ticket: %v", err)
	}

	got, err := store.Tickets().GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AssigneeName != "Ana" {
		t.Errorf("AssigneeName = %q", got.AssigneeName)
	}
	if names := got.TagNames(); len(names) != 1 || names[0] != "red" {
		t.Errorf("tags = %v", names)
	}
}

func TestTagsUniqueName(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	if err := store.Tags().Create(ctx, &domain.Tag{Name: "vip"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Tags().Create(ctx, &domain.Tag{Name: "vip"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestAuditListFiltersAndOrders(t *testing.T) {
	store := NewStore()
	store.SetClock(steppingClock())
	ctx := context.Background()

	a := &domain.Ticket{Title: "A", Description: "d", State: domain.TicketStateNew, Priority: domain.TicketPriorityLow}
	b := &domain.Ticket{Title: "B", Description: "d", State: domain.TicketStateNew, Priority: domain.TicketPriorityLow}
	_ = store.Tickets().Create(ctx, a)
	_ = store.Tickets().Create(ctx, b)

	for _, ticketID := range []string{a.ID, b.ID, a.ID} {
		entry := &domain.AuditEntry{TicketID: ticketID, FieldName: "state", UserID: config.SystemUserID, ChangeType: domain.ChangeTypeStateChange}
		if err := store.Audit().Create(ctx, entry); err != nil {
			t.Fatalf("Create audit: %v", err)
		}
	}

	all, _ := store.Audit().List(ctx, repository.AuditFilter{})
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if !all[0].Timestamp.After(all[1].Timestamp) {
		t.Error("audit not newest first")
	}
	if all[0].UserName != "Sistema" || all[0].TicketTitle != "A" {
		t.Errorf("joined fields missing: %+v", all[0])
	}

	onlyA, _ := store.Audit().List(ctx, repository.AuditFilter{TicketID: &a.ID, Limit: 1})
	if len(onlyA) != 1 || onlyA[0].TicketID != a.ID {
		t.Fatalf("filtered = %+v", onlyA)
	}
}

func TestAuditRejectsUnknownActor(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ticket := &domain.Ticket{Title: "A", Description: "d", State: domain.TicketStateNew, Priority: domain.TicketPriorityLow}
	_ = store.Tickets().Create(ctx, ticket)

	err := store.Audit().Create(ctx, &domain.AuditEntry{TicketID: ticket.ID, UserID: "ghost"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUsersListActiveOnly(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_ = store.Users().Create(ctx, &domain.User{Name: "Zoe", Login: "zoe", Active: true})
	_ = store.Users().Create(ctx, &domain.User{Name: "Bea", Login: "bea", Active: true})
	_ = store.Users().Create(ctx, &domain.User{Name: "Old", Login: "old", Active: false})

	active, _ := store.Users().List(ctx, repository.UserFilter{ActiveOnly: true, Limit: 10})
	if len(active) != 2 || active[0].Name != "Bea" || active[1].Name != "Zoe" {
		t.Fatalf("active = %+v", active)
	}

	everyone, _ := store.Users().List(ctx, repository.UserFilter{Limit: 10})
	if len(everyone) != 4 {
		t.Fatalf("len = %d, want 4 (including system user)", len(everyone))
	}
}
